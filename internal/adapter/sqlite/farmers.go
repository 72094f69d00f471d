package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

const farmerColumns = `id, name, phone, state, district, village, land_size, crop_type,
	land_type, farming_category, social_category, gender, age, annual_income, language`

// GetFarmer returns one farmer profile.
func (s *Store) GetFarmer(ctx context.Context, id uuid.UUID) (domain.Farmer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+farmerColumns+` FROM farmers WHERE id = ?
	`, id)

	var f domain.Farmer
	err := row.Scan(&f.ID, &f.Name, &f.Phone, &f.State, &f.District, &f.Village, &f.LandSize, &f.CropType,
		&f.LandType, &f.FarmingCategory, &f.SocialCategory, &f.Gender, &f.Age, &f.AnnualIncome, &f.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Farmer{}, domain.ErrFarmerNotFound
	}
	if err != nil {
		return domain.Farmer{}, fmt.Errorf("get farmer: %w", err)
	}
	return f, nil
}

// UpsertFarmer inserts or replaces a farmer profile. Profiles are synced from
// the farmers service; the claims tables only reference them.
func (s *Store) UpsertFarmer(ctx context.Context, f domain.Farmer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO farmers (`+farmerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			state = excluded.state,
			district = excluded.district,
			village = excluded.village,
			land_size = excluded.land_size,
			crop_type = excluded.crop_type,
			land_type = excluded.land_type,
			farming_category = excluded.farming_category,
			social_category = excluded.social_category,
			gender = excluded.gender,
			age = excluded.age,
			annual_income = excluded.annual_income,
			language = excluded.language
	`, f.ID, f.Name, f.Phone, f.State, f.District, f.Village, f.LandSize, f.CropType,
		f.LandType, f.FarmingCategory, f.SocialCategory, f.Gender, f.Age, f.AnnualIncome, f.Language)
	if err != nil {
		return fmt.Errorf("upsert farmer: %w", err)
	}
	return nil
}

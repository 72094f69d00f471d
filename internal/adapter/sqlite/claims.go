package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

const claimColumns = `id, claim_code, farmer_id, alert_id, loss_type, date_of_calamity,
	survey_number, area_affected, damage_description, form_json, photos_json, documents_json,
	status, deadline, is_within_deadline, admin_notes, rejection_reason, verified_by, verified_at,
	submitted_at, created_at, updated_at`

// claimCodeRetries bounds regeneration attempts on a claim code collision.
const claimCodeRetries = 5

// CreateClaim inserts a new claim, regenerating the claim code on the rare
// collision with an existing one.
func (s *Store) CreateClaim(ctx context.Context, claim *domain.InsuranceClaim) error {
	claim.BeforeSave()

	for attempt := 0; ; attempt++ {
		err := s.insertClaim(ctx, claim)
		if err == nil {
			return nil
		}
		if isClaimCodeCollision(err) && attempt < claimCodeRetries {
			s.logger.Warn("claim code collision, regenerating", "claim_code", claim.ClaimCode)
			claim.ClaimCode = domain.NewClaimCode()
			continue
		}
		return fmt.Errorf("insert claim: %w", err)
	}
}

func (s *Store) insertClaim(ctx context.Context, claim *domain.InsuranceClaim) error {
	form, photos, documents, err := marshalClaimJSON(claim)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO insurance_claims (`+claimColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, claim.ID, claim.ClaimCode, claim.FarmerID, claim.AlertID, string(claim.LossType), nullableTime(claim.DateOfCalamity),
		claim.SurveyNumber, claim.AreaAffected, claim.DamageDescription, form, photos, documents,
		string(claim.Status), claim.Deadline, claim.IsWithinDeadline, claim.AdminNotes, claim.RejectionReason,
		claim.VerifiedBy, claim.VerifiedAt, claim.SubmittedAt, claim.CreatedAt.UTC(), claim.UpdatedAt.UTC())
	return err
}

// UpdateClaim rewrites an existing claim.
func (s *Store) UpdateClaim(ctx context.Context, claim *domain.InsuranceClaim) error {
	claim.BeforeSave()

	form, photos, documents, err := marshalClaimJSON(claim)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE insurance_claims SET
			loss_type = ?, date_of_calamity = ?, survey_number = ?, area_affected = ?,
			damage_description = ?, form_json = ?, photos_json = ?, documents_json = ?,
			status = ?, deadline = ?, is_within_deadline = ?, admin_notes = ?,
			rejection_reason = ?, verified_by = ?, verified_at = ?, submitted_at = ?, updated_at = ?
		WHERE id = ? AND farmer_id = ?
	`, string(claim.LossType), nullableTime(claim.DateOfCalamity), claim.SurveyNumber, claim.AreaAffected,
		claim.DamageDescription, form, photos, documents,
		string(claim.Status), claim.Deadline, claim.IsWithinDeadline, claim.AdminNotes,
		claim.RejectionReason, claim.VerifiedBy, claim.VerifiedAt, claim.SubmittedAt, claim.UpdatedAt.UTC(),
		claim.ID, claim.FarmerID)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrClaimNotFound
	}
	return nil
}

// GetClaim returns one claim scoped to the owning farmer.
func (s *Store) GetClaim(ctx context.Context, id, farmerID uuid.UUID) (domain.InsuranceClaim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+claimColumns+` FROM insurance_claims WHERE id = ? AND farmer_id = ?
	`, id, farmerID)

	claim, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InsuranceClaim{}, domain.ErrClaimNotFound
	}
	if err != nil {
		return domain.InsuranceClaim{}, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// ListClaims returns a farmer's claims, newest first.
func (s *Store) ListClaims(ctx context.Context, farmerID uuid.UUID) ([]domain.InsuranceClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+claimColumns+` FROM insurance_claims
		WHERE farmer_id = ?
		ORDER BY created_at DESC
	`, farmerID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.InsuranceClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

func isClaimCodeCollision(err error) bool {
	return err != nil && strings.Contains(err.Error(), "insurance_claims.claim_code")
}

func marshalClaimJSON(claim *domain.InsuranceClaim) (form, photos, documents []byte, err error) {
	if form, err = json.Marshal(claim.FormData); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal form data: %w", err)
	}
	if photos, err = json.Marshal(claim.EvidencePhotos); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal evidence photos: %w", err)
	}
	if documents, err = json.Marshal(claim.AttachedDocuments); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal attached documents: %w", err)
	}
	return form, photos, documents, nil
}

func scanClaim(row rowScanner) (domain.InsuranceClaim, error) {
	var (
		claim                   domain.InsuranceClaim
		alertID                 sql.NullString
		lossType, status        string
		calamity, deadline      sql.NullTime
		verifiedAt, submittedAt sql.NullTime
		form, photos, documents sql.NullString
	)
	err := row.Scan(&claim.ID, &claim.ClaimCode, &claim.FarmerID, &alertID, &lossType, &calamity,
		&claim.SurveyNumber, &claim.AreaAffected, &claim.DamageDescription, &form, &photos, &documents,
		&status, &deadline, &claim.IsWithinDeadline, &claim.AdminNotes, &claim.RejectionReason,
		&claim.VerifiedBy, &verifiedAt, &submittedAt, &claim.CreatedAt, &claim.UpdatedAt)
	if err != nil {
		return domain.InsuranceClaim{}, err
	}

	claim.LossType = domain.LossType(lossType)
	claim.Status = domain.ClaimStatus(status)
	claim.CreatedAt = claim.CreatedAt.UTC()
	claim.UpdatedAt = claim.UpdatedAt.UTC()

	if alertID.Valid && alertID.String != "" {
		id, err := uuid.Parse(alertID.String)
		if err != nil {
			return domain.InsuranceClaim{}, fmt.Errorf("parse alert id: %w", err)
		}
		claim.AlertID = &id
	}
	if calamity.Valid {
		claim.DateOfCalamity = calamity.Time.UTC()
	}
	if deadline.Valid {
		d := deadline.Time.UTC()
		claim.Deadline = &d
	}
	if verifiedAt.Valid {
		v := verifiedAt.Time.UTC()
		claim.VerifiedAt = &v
	}
	if submittedAt.Valid {
		sub := submittedAt.Time.UTC()
		claim.SubmittedAt = &sub
	}

	if form.Valid && form.String != "" {
		if err := json.Unmarshal([]byte(form.String), &claim.FormData); err != nil {
			return domain.InsuranceClaim{}, fmt.Errorf("unmarshal form data: %w", err)
		}
	}
	if photos.Valid && photos.String != "" {
		if err := json.Unmarshal([]byte(photos.String), &claim.EvidencePhotos); err != nil {
			return domain.InsuranceClaim{}, fmt.Errorf("unmarshal evidence photos: %w", err)
		}
	}
	if documents.Valid && documents.String != "" {
		if err := json.Unmarshal([]byte(documents.String), &claim.AttachedDocuments); err != nil {
			return domain.InsuranceClaim{}, fmt.Errorf("unmarshal attached documents: %w", err)
		}
	}
	return claim, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

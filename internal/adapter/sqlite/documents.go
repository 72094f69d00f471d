package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// FetchRequired returns the farmer's vault documents for the requested types,
// reporting which types the vault is missing.
func (s *Store) FetchRequired(ctx context.Context, farmerID uuid.UUID, types []domain.DocumentType) ([]domain.DocumentRecord, []domain.DocumentType, error) {
	byType := make(map[domain.DocumentType]domain.DocumentRecord)

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_type, url, filename, uploaded_at FROM vault_documents WHERE farmer_id = ?
	`, farmerID)
	if err != nil {
		return nil, nil, fmt.Errorf("query vault documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec        domain.DocumentRecord
			docType    string
			filename   sql.NullString
			uploadedAt sql.NullTime
		)
		if err := rows.Scan(&docType, &rec.URL, &filename, &uploadedAt); err != nil {
			return nil, nil, fmt.Errorf("scan vault document: %w", err)
		}
		rec.DocumentType = domain.DocumentType(docType)
		rec.Filename = filename.String
		if uploadedAt.Valid {
			at := uploadedAt.Time.UTC()
			rec.UploadedAt = &at
		}
		byType[rec.DocumentType] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var found []domain.DocumentRecord
	var missing []domain.DocumentType
	for _, dt := range types {
		if rec, ok := byType[dt]; ok {
			found = append(found, rec)
		} else {
			missing = append(missing, dt)
		}
	}
	return found, missing, nil
}

// PutVaultDocument stores or replaces one document in the farmer's vault.
func (s *Store) PutVaultDocument(ctx context.Context, farmerID uuid.UUID, rec domain.DocumentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vault_documents (farmer_id, document_type, url, filename, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(farmer_id, document_type) DO UPDATE SET
			url = excluded.url,
			filename = excluded.filename,
			uploaded_at = excluded.uploaded_at
	`, farmerID, string(rec.DocumentType), rec.URL, rec.Filename, rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("put vault document: %w", err)
	}
	return nil
}

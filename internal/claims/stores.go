package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// FarmerStore reads farmer profiles. Profile management is owned by the
// farmers service; this service only resolves identities it is handed.
type FarmerStore interface {
	GetFarmer(ctx context.Context, id uuid.UUID) (domain.Farmer, error)
}

// AlertStore persists weather alerts. Lookups are farmer-scoped: GetAlert
// returns domain.ErrAlertNotFound when the alert exists but belongs to a
// different farmer.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *domain.WeatherAlert) error
	UpdateAlert(ctx context.Context, alert *domain.WeatherAlert) error
	GetAlert(ctx context.Context, id, farmerID uuid.UUID) (domain.WeatherAlert, error)
	ListAlerts(ctx context.Context, farmerID uuid.UUID, limit int) ([]domain.WeatherAlert, error)
}

// ClaimStore persists insurance claims. Implementations call
// (*domain.InsuranceClaim).BeforeSave on every create and update so derived
// fields (claim code, deadline, deadline flag) stay correct.
type ClaimStore interface {
	CreateClaim(ctx context.Context, claim *domain.InsuranceClaim) error
	UpdateClaim(ctx context.Context, claim *domain.InsuranceClaim) error
	GetClaim(ctx context.Context, id, farmerID uuid.UUID) (domain.InsuranceClaim, error)
	ListClaims(ctx context.Context, farmerID uuid.UUID) ([]domain.InsuranceClaim, error)
}

// DocumentVault fetches the farmer's stored documents by type, reporting
// which of the requested types are missing.
type DocumentVault interface {
	FetchRequired(ctx context.Context, farmerID uuid.UUID, types []domain.DocumentType) (found []domain.DocumentRecord, missing []domain.DocumentType, err error)
}

// EvidenceStore writes evidence photo bytes and returns a serving URL.
type EvidenceStore interface {
	Store(ctx context.Context, farmerID uuid.UUID, path string, data []byte) (string, error)
}

// AlertPublisher fans a triggered alert out to the notification topic.
// A nil publisher disables publishing.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert domain.WeatherAlert) error
}

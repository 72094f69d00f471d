package domain

import (
	"time"

	"github.com/google/uuid"
)

// WeatherAlert is the persisted record of one weather check. Every check
// produces one, triggering or not: non-triggering records are the audit trail
// showing the system looked and found nothing. Never deleted by this service.
type WeatherAlert struct {
	ID             uuid.UUID         `json:"id"`
	FarmerID       uuid.UUID         `json:"farmer_id"`
	AlertType      AlertType         `json:"alert_type"`
	Severity       Severity          `json:"severity"`
	Detail         string            `json:"detail"`
	Triggered      bool              `json:"triggered"`
	Candidates     []Candidate       `json:"candidates,omitempty"`
	Snapshot       WeatherSnapshot   `json:"snapshot"`
	GovAlerts      []GovernmentAlert `json:"government_alerts,omitempty"`
	LocationName   string            `json:"location_name"`
	TriggeredAt    time.Time         `json:"triggered_at"`
	IsAcknowledged bool              `json:"is_acknowledged"`
	HasDamage      bool              `json:"has_damage"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
}

// NewWeatherAlert builds the alert record for a completed weather check.
// Non-triggering classifications keep a moderate default severity so the
// column is never empty, matching the scheme form's expectations.
func NewWeatherAlert(farmerID uuid.UUID, location string, cls AlertClassification, snapshot WeatherSnapshot, govAlerts []GovernmentAlert) WeatherAlert {
	severity := cls.Severity
	if severity == "" {
		severity = SeverityModerate
	}
	return WeatherAlert{
		ID:           uuid.New(),
		FarmerID:     farmerID,
		AlertType:    cls.AlertType,
		Severity:     severity,
		Detail:       cls.Detail,
		Triggered:    cls.Triggered,
		Candidates:   cls.Candidates,
		Snapshot:     snapshot,
		GovAlerts:    govAlerts,
		LocationName: location,
		TriggeredAt:  clock.Now(),
	}
}

// Acknowledge records the farmer's response. A second call overwrites the
// first: acknowledgment is idempotent in effect but not guarded, so the
// latest response and timestamp win.
func (a *WeatherAlert) Acknowledge(hasDamage bool) {
	now := clock.Now()
	a.IsAcknowledged = true
	a.HasDamage = hasDamage
	a.AcknowledgedAt = &now
}

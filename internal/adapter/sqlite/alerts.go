package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

const alertColumns = `id, farmer_id, alert_type, severity, detail, triggered,
	candidates_json, snapshot_json, gov_alerts_json, location_name,
	triggered_at, is_acknowledged, has_damage, acknowledged_at`

// CreateAlert inserts a new weather alert record.
func (s *Store) CreateAlert(ctx context.Context, alert *domain.WeatherAlert) error {
	candidates, snapshot, govAlerts, err := marshalAlertJSON(alert)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO weather_alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.FarmerID, string(alert.AlertType), string(alert.Severity), alert.Detail, alert.Triggered,
		candidates, snapshot, govAlerts, alert.LocationName,
		alert.TriggeredAt.UTC(), alert.IsAcknowledged, alert.HasDamage, alert.AcknowledgedAt)
	if err != nil {
		return fmt.Errorf("insert weather alert: %w", err)
	}
	return nil
}

// UpdateAlert rewrites an existing alert record.
func (s *Store) UpdateAlert(ctx context.Context, alert *domain.WeatherAlert) error {
	candidates, snapshot, govAlerts, err := marshalAlertJSON(alert)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE weather_alerts SET
			alert_type = ?, severity = ?, detail = ?, triggered = ?,
			candidates_json = ?, snapshot_json = ?, gov_alerts_json = ?, location_name = ?,
			triggered_at = ?, is_acknowledged = ?, has_damage = ?, acknowledged_at = ?
		WHERE id = ? AND farmer_id = ?
	`, string(alert.AlertType), string(alert.Severity), alert.Detail, alert.Triggered,
		candidates, snapshot, govAlerts, alert.LocationName,
		alert.TriggeredAt.UTC(), alert.IsAcknowledged, alert.HasDamage, alert.AcknowledgedAt,
		alert.ID, alert.FarmerID)
	if err != nil {
		return fmt.Errorf("update weather alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// GetAlert returns one alert scoped to the owning farmer.
func (s *Store) GetAlert(ctx context.Context, id, farmerID uuid.UUID) (domain.WeatherAlert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+` FROM weather_alerts WHERE id = ? AND farmer_id = ?
	`, id, farmerID)

	alert, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WeatherAlert{}, domain.ErrAlertNotFound
	}
	if err != nil {
		return domain.WeatherAlert{}, fmt.Errorf("get weather alert: %w", err)
	}
	return alert, nil
}

// ListAlerts returns a farmer's newest alerts.
func (s *Store) ListAlerts(ctx context.Context, farmerID uuid.UUID, limit int) ([]domain.WeatherAlert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+alertColumns+` FROM weather_alerts
		WHERE farmer_id = ?
		ORDER BY triggered_at DESC
		LIMIT ?
	`, farmerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weather alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.WeatherAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weather alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func marshalAlertJSON(alert *domain.WeatherAlert) (candidates, snapshot, govAlerts []byte, err error) {
	if candidates, err = json.Marshal(alert.Candidates); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal candidates: %w", err)
	}
	if snapshot, err = json.Marshal(alert.Snapshot); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if govAlerts, err = json.Marshal(alert.GovAlerts); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal government alerts: %w", err)
	}
	return candidates, snapshot, govAlerts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (domain.WeatherAlert, error) {
	var (
		alert                           domain.WeatherAlert
		alertType, severity             string
		candidates, snapshot, govAlerts sql.NullString
		acknowledgedAt                  sql.NullTime
	)
	err := row.Scan(&alert.ID, &alert.FarmerID, &alertType, &severity, &alert.Detail, &alert.Triggered,
		&candidates, &snapshot, &govAlerts, &alert.LocationName,
		&alert.TriggeredAt, &alert.IsAcknowledged, &alert.HasDamage, &acknowledgedAt)
	if err != nil {
		return domain.WeatherAlert{}, err
	}

	alert.AlertType = domain.AlertType(alertType)
	alert.Severity = domain.Severity(severity)
	alert.TriggeredAt = alert.TriggeredAt.UTC()
	if acknowledgedAt.Valid {
		at := acknowledgedAt.Time.UTC()
		alert.AcknowledgedAt = &at
	}

	if candidates.Valid && candidates.String != "" {
		if err := json.Unmarshal([]byte(candidates.String), &alert.Candidates); err != nil {
			return domain.WeatherAlert{}, fmt.Errorf("unmarshal candidates: %w", err)
		}
	}
	if snapshot.Valid && snapshot.String != "" {
		if err := json.Unmarshal([]byte(snapshot.String), &alert.Snapshot); err != nil {
			return domain.WeatherAlert{}, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	if govAlerts.Valid && govAlerts.String != "" {
		if err := json.Unmarshal([]byte(govAlerts.String), &alert.GovAlerts); err != nil {
			return domain.WeatherAlert{}, fmt.Errorf("unmarshal government alerts: %w", err)
		}
	}
	return alert, nil
}

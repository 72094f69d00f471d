package claims

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

// CheckResult is the outcome of one weather check: the classification, the
// snapshot it was derived from, and the alert record written for it.
type CheckResult struct {
	Alert          domain.WeatherAlert
	Classification domain.AlertClassification
	Snapshot       domain.WeatherSnapshot
	Location       string
	GovAlerts      []domain.GovernmentAlert
}

// Recorder runs weather checks for farmers and owns the alert records they
// produce. Every check persists an alert, triggering or not: the non-events
// are the audit trail.
type Recorder struct {
	source       domain.WeatherSource
	alerts       AlertStore
	publisher    AlertPublisher // nil disables notification publishing
	logger       *slog.Logger
	metrics      *observability.Metrics
	forecastDays int
}

// NewRecorder creates a Recorder. Pass a nil publisher to disable alert
// notifications.
func NewRecorder(source domain.WeatherSource, alerts AlertStore, publisher AlertPublisher, logger *slog.Logger, metrics *observability.Metrics, forecastDays int) *Recorder {
	if forecastDays < 1 {
		forecastDays = 1
	}
	return &Recorder{
		source:       source,
		alerts:       alerts,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		forecastDays: forecastDays,
	}
}

// CheckLocation fetches weather at the farmer's registered location, runs the
// threshold evaluator, merges government alerts, and persists the resulting
// alert record. Returns domain.ErrLocationUnavailable when the profile has no
// location and domain.ErrWeatherSourceUnavailable when the upstream fetch
// fails; neither is retried here.
func (r *Recorder) CheckLocation(ctx context.Context, farmer domain.Farmer) (CheckResult, error) {
	query, err := farmer.LocationQuery()
	if err != nil {
		r.metrics.WeatherChecks.WithLabelValues("error").Inc()
		return CheckResult{}, err
	}

	snapshot, govAlerts, err := r.source.FetchForecastWithAlerts(ctx, query, r.forecastDays)
	if err != nil {
		r.metrics.WeatherChecks.WithLabelValues("error").Inc()
		r.logger.Error("weather fetch failed", "location", query, "error", err)
		return CheckResult{}, fmt.Errorf("fetch weather for %q: %w", query, err)
	}

	cls := domain.Evaluate(*snapshot)
	if !cls.Triggered {
		// No threshold matched; a government-issued warning still raises a
		// moderate alert from its headline.
		if govCls, ok := domain.ClassifyGovernmentAlert(govAlerts); ok {
			cls = govCls
		}
	}

	alert := domain.NewWeatherAlert(farmer.ID, query, cls, *snapshot, govAlerts)
	if err := r.alerts.CreateAlert(ctx, &alert); err != nil {
		r.metrics.WeatherChecks.WithLabelValues("error").Inc()
		return CheckResult{}, fmt.Errorf("record weather alert: %w", err)
	}

	if cls.Triggered {
		r.metrics.WeatherChecks.WithLabelValues("alert").Inc()
		r.metrics.AlertsTriggered.WithLabelValues(string(cls.AlertType), string(cls.Severity)).Inc()
		r.publish(ctx, alert)
	} else {
		r.metrics.WeatherChecks.WithLabelValues("normal").Inc()
	}

	r.logger.Info("weather check recorded",
		"farmer_id", farmer.ID,
		"location", query,
		"triggered", cls.Triggered,
		"alert_type", cls.AlertType,
		"severity", cls.Severity,
	)

	return CheckResult{
		Alert:          alert,
		Classification: cls,
		Snapshot:       *snapshot,
		Location:       query,
		GovAlerts:      govAlerts,
	}, nil
}

// Acknowledge records the farmer's response to an alert. Re-acknowledging
// overwrites the earlier response.
func (r *Recorder) Acknowledge(ctx context.Context, farmerID, alertID uuid.UUID, hasDamage bool) (domain.WeatherAlert, error) {
	alert, err := r.alerts.GetAlert(ctx, alertID, farmerID)
	if err != nil {
		return domain.WeatherAlert{}, err
	}

	alert.Acknowledge(hasDamage)
	if err := r.alerts.UpdateAlert(ctx, &alert); err != nil {
		return domain.WeatherAlert{}, fmt.Errorf("save acknowledgment: %w", err)
	}

	r.logger.Info("alert acknowledged", "alert_id", alertID, "farmer_id", farmerID, "has_damage", hasDamage)
	return alert, nil
}

// Alert returns one of the farmer's alerts by ID.
func (r *Recorder) Alert(ctx context.Context, farmerID, alertID uuid.UUID) (domain.WeatherAlert, error) {
	return r.alerts.GetAlert(ctx, alertID, farmerID)
}

// RecentAlerts returns the newest alerts for a farmer, newest first.
func (r *Recorder) RecentAlerts(ctx context.Context, farmerID uuid.UUID, limit int) ([]domain.WeatherAlert, error) {
	return r.alerts.ListAlerts(ctx, farmerID, limit)
}

// publish sends the alert notification. Publish failures are logged and
// counted but never fail the weather check.
func (r *Recorder) publish(ctx context.Context, alert domain.WeatherAlert) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishAlert(ctx, alert); err != nil {
		r.metrics.AlertPublishes.WithLabelValues("error").Inc()
		r.logger.Warn("alert publish failed", "alert_id", alert.ID, "error", err)
		return
	}
	r.metrics.AlertPublishes.WithLabelValues("success").Inc()
}

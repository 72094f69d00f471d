package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the claims service.
type Metrics struct {
	WeatherChecks   *prometheus.CounterVec // labels: outcome={alert,normal,error}
	AlertsTriggered *prometheus.CounterVec // labels: type, severity
	AlertPublishes  *prometheus.CounterVec // labels: outcome={success,error}

	ClaimsCreated        prometheus.Counter
	EvidenceUploads      *prometheus.CounterVec // labels: outcome={success,error}
	ClaimsSubmitted      *prometheus.CounterVec // labels: within_deadline={true,false}
	SubmissionRejections *prometheus.CounterVec // labels: step={evidence,documents}

	// Upstream weather API metrics.
	WeatherAPIDuration *prometheus.HistogramVec // labels: endpoint={current,forecast}
	WeatherCache       *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.WeatherChecks,
		m.AlertsTriggered,
		m.AlertPublishes,
		m.ClaimsCreated,
		m.EvidenceUploads,
		m.ClaimsSubmitted,
		m.SubmissionRejections,
		m.WeatherAPIDuration,
		m.WeatherCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		WeatherChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "weather_checks_total",
			Help:      "Weather checks by outcome.",
		}, []string{"outcome"}),
		AlertsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "alerts_triggered_total",
			Help:      "Triggered calamity alerts by type and severity.",
		}, []string{"type", "severity"}),
		AlertPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "alert_publishes_total",
			Help:      "Alert notification publishes by outcome.",
		}, []string{"outcome"}),
		ClaimsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "claims_created_total",
			Help:      "Total insurance claims created.",
		}),
		EvidenceUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "evidence_uploads_total",
			Help:      "Evidence photo uploads by outcome.",
		}, []string{"outcome"}),
		ClaimsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "claims_submitted_total",
			Help:      "Submitted claims by deadline compliance.",
		}, []string{"within_deadline"}),
		SubmissionRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "submission_rejections_total",
			Help:      "Submissions blocked by a readiness gate, by step.",
		}, []string{"step"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crop_claims",
			Name:      "weather_api_duration_seconds",
			Help:      "Upstream weather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_claims",
			Name:      "weather_cache_total",
			Help:      "Weather snapshot cache lookups by result.",
		}, []string{"result"}),
	}
}

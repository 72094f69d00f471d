package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/claims"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// WeatherController serves weather checks and alert acknowledgment.
type WeatherController struct {
	recorder *claims.Recorder
	logger   *slog.Logger
}

func NewWeatherController(recorder *claims.Recorder, logger *slog.Logger) *WeatherController {
	return &WeatherController{recorder: recorder, logger: logger}
}

// CheckWeather runs a weather check at the farmer's registered location.
// POST /api/claims/check-weather
func (wc *WeatherController) CheckWeather(c *gin.Context) {
	farmer := currentFarmer(c)

	result, err := wc.recorder.CheckLocation(c.Request.Context(), farmer)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	message := "No dangerous weather conditions detected"
	if result.Classification.Triggered {
		message = "Weather alert raised: " + result.Classification.Detail
	}

	respondOK(c, http.StatusOK, message, gin.H{
		"alert":             result.Alert,
		"triggered":         result.Classification.Triggered,
		"conditions":        result.Snapshot,
		"location":          result.Location,
		"government_alerts": result.GovAlerts,
	})
}

type acknowledgeRequest struct {
	AlertID   string `json:"alert_id" binding:"required"`
	HasDamage bool   `json:"has_damage"`
}

// AcknowledgeAlert records the farmer's damage response to an alert.
// POST /api/claims/acknowledge-alert
func (wc *WeatherController) AcknowledgeAlert(c *gin.Context) {
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "alert_id is required")
		return
	}
	alertID, err := uuid.Parse(req.AlertID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert_id")
		return
	}

	farmer := currentFarmer(c)
	alert, err := wc.recorder.Acknowledge(c.Request.Context(), farmer.ID, alertID, req.HasDamage)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	message := "Alert acknowledged"
	if req.HasDamage {
		message = "Alert acknowledged; you can now file a claim for the damage"
	}
	respondOK(c, http.StatusOK, message, gin.H{"alert": alert})
}

// recentAlertsLimit caps the alert history returned to the app.
const recentAlertsLimit = 20

// ListAlerts returns the farmer's recent alert history.
// GET /api/claims/alerts
func (wc *WeatherController) ListAlerts(c *gin.Context) {
	farmer := currentFarmer(c)

	alerts, err := wc.recorder.RecentAlerts(c.Request.Context(), farmer.ID, recentAlertsLimit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if alerts == nil {
		alerts = []domain.WeatherAlert{}
	}

	respondOK(c, http.StatusOK, "Recent weather alerts", gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// All responses share one envelope so mobile clients can switch on "success"
// before looking at the payload.

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondDomainError maps the domain failure taxonomy to HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	var incomplete *domain.SubmissionIncompleteError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": incomplete.Message,
			"step":    incomplete.Step,
		})
	case errors.Is(err, domain.ErrLocationUnavailable):
		respondError(c, http.StatusBadRequest, "farmer profile has no location; set village, district, or state")
	case errors.Is(err, domain.ErrWeatherSourceUnavailable):
		respondError(c, http.StatusServiceUnavailable, "weather service is temporarily unavailable")
	case errors.Is(err, domain.ErrAlertNotFound):
		respondError(c, http.StatusNotFound, "weather alert not found")
	case errors.Is(err, domain.ErrClaimNotFound):
		respondError(c, http.StatusNotFound, "claim not found")
	case errors.Is(err, domain.ErrUploadFailed):
		respondError(c, http.StatusBadGateway, "evidence upload failed, please retry")
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

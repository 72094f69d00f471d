package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/claims"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// FarmerIDHeader carries the caller's farmer identity, resolved upstream by
// the identity service.
const FarmerIDHeader = "X-Farmer-ID"

const farmerContextKey = "farmer"

// FarmerAuth resolves the X-Farmer-ID header to a farmer profile and stores
// it on the request context. Requests without a valid, known farmer ID never
// reach the controllers.
func FarmerAuth(farmers claims.FarmerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(FarmerIDHeader)
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "X-Farmer-ID header is required")
			c.Abort()
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid farmer ID")
			c.Abort()
			return
		}

		farmer, err := farmers.GetFarmer(c.Request.Context(), id)
		if errors.Is(err, domain.ErrFarmerNotFound) {
			respondError(c, http.StatusNotFound, "farmer not found")
			c.Abort()
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to resolve farmer")
			c.Abort()
			return
		}

		c.Set(farmerContextKey, farmer)
		c.Next()
	}
}

// currentFarmer returns the profile stored by FarmerAuth.
func currentFarmer(c *gin.Context) domain.Farmer {
	return c.MustGet(farmerContextKey).(domain.Farmer)
}

// Package httpapi exposes the claims service over REST. Farmer-facing
// routes live under /api/claims; health, readiness, and metrics follow the
// usual operational surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrisarthi/crop-claims-service/internal/claims"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the claims REST API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the controllers into a gin router and wraps it in an HTTP
// server with sane timeouts.
func NewServer(addr string, recorder *claims.Recorder, engine *claims.Engine, farmers claims.FarmerStore, ready ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	router.GET("/healthz", handleHealth)
	router.GET("/readyz", handleReady(ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	weather := NewWeatherController(recorder, logger)
	claimsCtrl := NewClaimsController(recorder, engine, logger)

	api := router.Group("/api/claims", FarmerAuth(farmers))
	{
		api.POST("/check-weather", weather.CheckWeather)
		api.POST("/acknowledge-alert", weather.AcknowledgeAlert)
		api.GET("/alerts", weather.ListAlerts)

		api.POST("/create", claimsCtrl.Create)
		api.GET("", claimsCtrl.List)
		api.GET("/:id", claimsCtrl.Get)
		api.POST("/:id/upload-evidence", claimsCtrl.UploadEvidence)
		api.POST("/:id/attach-documents", claimsCtrl.AttachDocuments)
		api.POST("/:id/submit", claimsCtrl.Submit)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrisarthi/crop-claims-service/internal/adapter/blob"
	"github.com/agrisarthi/crop-claims-service/internal/adapter/httpapi"
	kafkaadapter "github.com/agrisarthi/crop-claims-service/internal/adapter/kafka"
	"github.com/agrisarthi/crop-claims-service/internal/adapter/sqlite"
	"github.com/agrisarthi/crop-claims-service/internal/adapter/weatherapi"
	"github.com/agrisarthi/crop-claims-service/internal/claims"
	"github.com/agrisarthi/crop-claims-service/internal/config"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := weatherapi.NewClient(cfg.WeatherAPIKey, cfg.WeatherAPITimeout, logger, metrics)
	var source domain.WeatherSource = weatherapi.NewCachedSource(
		client, cfg.WeatherCacheTTL, cfg.WeatherCacheSize, clockwork.NewRealClock(), metrics)

	// Alert notifications are feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher claims.AlertPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		publisher = kafkaPublisher
		logger.Info("alert notifications enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("alert notifications disabled")
	}

	recorder := claims.NewRecorder(source, store, publisher, logger, metrics, cfg.ForecastDays)
	engine := claims.NewEngine(store, store, blob.NewDiskStore(cfg.EvidenceDir, cfg.EvidenceBaseURL), logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, recorder, engine, store, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

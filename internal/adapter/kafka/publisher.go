package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/agrisarthi/crop-claims-service/internal/domain"
)

// Publisher produces weather alert notifications to a Kafka topic.
// It implements claims.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert notification topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one triggered alert. Downstream
// consumers fan it out to SMS and app notifications.
func (p *Publisher) PublishAlert(ctx context.Context, alert domain.WeatherAlert) error {
	msg, err := serializeToMessage(alert)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a WeatherAlert into a Kafka message keyed by
// farmer so one farmer's alerts stay ordered within a partition.
func serializeToMessage(alert domain.WeatherAlert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.FarmerID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alert.AlertType)},
			{Key: "severity", Value: []byte(alert.Severity)},
			{Key: "triggered_at", Value: []byte(alert.TriggeredAt.Format(time.RFC3339))},
		},
	}, nil
}

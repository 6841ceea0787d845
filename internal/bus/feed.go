// Package bus publishes served alerts to a Kafka topic so downstream
// consumers (dashboards, notifiers) can subscribe without polling the API.
// Like the archive, it sits off the serving path.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/tradequest/newsintel/internal/models"
)

// Feed writes alerts to a Kafka topic. It satisfies the alerts.Sink
// interface.
type Feed struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// New creates a feed over the given brokers and topic.
func New(brokers []string, topic string, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &Feed{writer: writer, log: logger}
}

// Deliver publishes one alert keyed by its id.
func (f *Feed) Deliver(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	if err := f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (f *Feed) Close() error {
	return f.writer.Close()
}

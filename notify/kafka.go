// Package notify announces published forecasts on a Kafka topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"greenhouse-forecaster/models"
)

const SchemaVersion = "v1"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ForecastEvent is the message body published for every forecast record.
type ForecastEvent struct {
	SchemaVersion string                 `json:"schema_version"`
	Channel       string                 `json:"channel"`
	RunID         string                 `json:"run_id"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Points        []models.ForecastPoint `json:"points"`
}

type KafkaNotifier struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	log     zerolog.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log zerolog.Logger) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newKafkaNotifier(w, topic, log)
}

func newKafkaNotifier(w messageWriter, topic string, log zerolog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer:  w,
		topic:   topic,
		timeout: 5 * time.Second,
		log:     log.With().Str("component", "kafka_notifier").Logger(),
	}
}

// ForecastPublished writes one message keyed by channel.
func (n *KafkaNotifier) ForecastPublished(ctx context.Context, rec models.ForecastRecord) error {
	body, err := json.Marshal(ForecastEvent{
		SchemaVersion: SchemaVersion,
		Channel:       rec.Channel,
		RunID:         rec.RunID,
		GeneratedAt:   rec.GeneratedAt,
		Points:        rec.Points,
	})
	if err != nil {
		return fmt.Errorf("encode forecast event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(rec.Channel), Value: body, Time: rec.GeneratedAt}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write forecast event to %s: %w", n.topic, err)
	}

	n.log.Debug().Str("channel", rec.Channel).Str("run_id", rec.RunID).Msg("Forecast event published")
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

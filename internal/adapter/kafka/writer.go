package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/config"
	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message keys of the published outputs.
const (
	KeyRankedVessels       = "ranked_vessels"
	KeyRankedVesselReports = "ranked_vessel_reports"
	KeyHourlyDensity       = "hourly_density"
)

// Writer publishes a run's outputs to the sink topic, one message per output.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes the ranking, the ranked reports and the hourly density in a
// single WriteMessages call.
func (w *Writer) Load(ctx context.Context, result domain.Result) error {
	msgs, err := serializeResult(result)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	w.logger.Debug("result published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeResult marshals each output of a Result into its own message.
func serializeResult(result domain.Result) ([]kafkago.Message, error) {
	generatedAt := []byte(result.GeneratedAt.Format(time.RFC3339))
	parts := []struct {
		key   string
		value any
	}{
		{KeyRankedVessels, result.RankedVessels},
		{KeyRankedVesselReports, result.RankedVesselReports},
		{KeyHourlyDensity, result.HourlyDensity},
	}

	msgs := make([]kafkago.Message, len(parts))
	for i, p := range parts {
		data, err := json.Marshal(p.value)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", p.key, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(p.key),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "output", Value: []byte(p.key)},
				{Key: "generated_at", Value: generatedAt},
			},
		}
	}
	return msgs, nil
}

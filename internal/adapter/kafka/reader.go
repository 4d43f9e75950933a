package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/config"
	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader takes a bounded snapshot of one partition of the raw AIS topic.
// Each message value is a JSON object keyed by DMA column name.
// It implements pipeline.Extractor.
type Reader struct {
	brokers     []string
	topic       string
	partition   int
	maxBytes    int
	idleTimeout time.Duration
	logger      *slog.Logger
}

const defaultSnapshotIdleTimeout = 5 * time.Second

// NewReader creates a snapshot reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	idle := cfg.KafkaSnapshotIdleTimeout
	if idle <= 0 {
		idle = defaultSnapshotIdleTimeout
	}
	return &Reader{
		brokers:     cfg.KafkaBrokers,
		topic:       cfg.KafkaSourceTopic,
		partition:   cfg.KafkaSourcePartition,
		maxBytes:    10e6,
		idleTimeout: idle,
		logger:      logger,
	}
}

// Extract reads every message that was on the partition when the call
// started. Messages produced afterwards belong to the next run.
func (r *Reader) Extract(ctx context.Context) (domain.RecordBatch, error) {
	if len(r.brokers) == 0 {
		return domain.RecordBatch{}, errors.New("kafka reader: no brokers configured")
	}

	first, last, err := r.offsets(ctx)
	if err != nil {
		return domain.RecordBatch{}, err
	}
	if last <= first {
		r.logger.Info("kafka partition empty", "topic", r.topic, "partition", r.partition)
		return domain.RecordBatch{}, nil
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   r.brokers,
		Topic:     r.topic,
		Partition: r.partition,
		MinBytes:  1,
		MaxBytes:  r.maxBytes,
	})
	defer reader.Close()
	if err := reader.SetOffset(first); err != nil {
		return domain.RecordBatch{}, fmt.Errorf("kafka set offset: %w", err)
	}

	batch, err := r.drain(ctx, reader, first, last)
	if err != nil {
		return domain.RecordBatch{}, err
	}

	r.logger.Info("kafka snapshot loaded",
		"topic", r.topic,
		"partition", r.partition,
		"first_offset", first,
		"last_offset", last,
		"records", len(batch.Records),
	)
	return batch, nil
}

// messageFetcher is the subset of *kafkago.Reader that drain uses.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	Offset() int64
}

// drain fetches messages until the snapshot end offset is reached. Offsets
// near the end may never be delivered (transaction markers, compacted
// records); a fetch idle for idleTimeout ends the snapshot.
func (r *Reader) drain(ctx context.Context, fetcher messageFetcher, first, last int64) (domain.RecordBatch, error) {
	var (
		columns = newColumnSet()
		records = make([]domain.AISRecord, 0, last-first)
		seen    = first - 1
	)
	for seen < last-1 && fetcher.Offset() < last {
		fetchCtx, cancel := context.WithTimeout(ctx, r.idleTimeout)
		msg, err := fetcher.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				r.logger.Warn("kafka snapshot ended before last offset",
					"last_seen_offset", seen,
					"last_offset", last,
					"idle_timeout", r.idleTimeout,
				)
				break
			}
			return domain.RecordBatch{}, fmt.Errorf("kafka fetch at offset %d: %w", fetcher.Offset(), err)
		}
		if msg.Offset >= last {
			break
		}
		seen = msg.Offset

		fields, err := mapMessageToFields(msg)
		if err != nil {
			// Malformed messages are skipped.
			r.logger.Warn("skipping malformed ais message", "offset", msg.Offset, "error", err)
			continue
		}
		columns.add(fields)
		records = append(records, domain.RecordFromFields(fields))
	}
	return domain.RecordBatch{Columns: columns.names, Records: records}, nil
}

func (r *Reader) offsets(ctx context.Context) (first, last int64, err error) {
	conn, err := kafkago.DialLeader(ctx, "tcp", r.brokers[0], r.topic, r.partition)
	if err != nil {
		return 0, 0, fmt.Errorf("kafka dial leader: %w", err)
	}
	defer conn.Close()

	first, last, err = conn.ReadOffsets()
	if err != nil {
		return 0, 0, fmt.Errorf("kafka read offsets: %w", err)
	}
	return first, last, nil
}

// mapMessageToFields decodes a message value into column/value pairs. JSON
// strings are taken verbatim, null becomes an empty cell, and numbers and
// booleans keep their literal text.
func mapMessageToFields(msg kafkago.Message) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return nil, fmt.Errorf("decode ais message: %w", err)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			fields[k] = ""
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("decode field %q: %w", k, err)
			}
			fields[k] = s
		default:
			fields[k] = string(v)
		}
	}
	return fields, nil
}

// columnSet accumulates the union of keys seen across messages, in
// first-seen order per message and sorted within each message.
type columnSet struct {
	seen  map[string]struct{}
	names []string
}

func newColumnSet() *columnSet {
	return &columnSet{seen: make(map[string]struct{})}
}

func (c *columnSet) add(fields map[string]string) {
	var fresh []string
	for k := range fields {
		if _, ok := c.seen[k]; !ok {
			c.seen[k] = struct{}{}
			fresh = append(fresh, k)
		}
	}
	slices.Sort(fresh)
	c.names = append(c.names, fresh...)
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// Publisher stores the latest run's outputs under well-known keys and
// announces each run on a pub/sub channel so dashboards can refresh.
// It implements pipeline.Loader.
type Publisher struct {
	client *goredis.Client
	keys   keySet
	logger *slog.Logger
}

type keySet struct {
	Ranking string
	Reports string
	Density string
	Stats   string
	Channel string
}

func newKeySet(prefix string) keySet {
	return keySet{
		Ranking: prefix + ":ranking",
		Reports: prefix + ":ranked_reports",
		Density: prefix + ":hourly_density",
		Stats:   prefix + ":stats",
		Channel: prefix + ":results",
	}
}

// runNotice is the message published after every successful store.
type runNotice struct {
	GeneratedAt time.Time `json:"generated_at"`
	Vessels     int       `json:"vessels"`
	Kept        int       `json:"kept"`
}

// NewPublisher parses a redis:// URL and creates a client. No connection is
// made until Ping or Load.
func NewPublisher(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return &Publisher{
		client: goredis.NewClient(opts),
		keys:   newKeySet(prefix),
		logger: logger,
	}, nil
}

// Ping verifies the server is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Load writes all outputs in one MULTI/EXEC transaction, then publishes a
// run notice.
func (p *Publisher) Load(ctx context.Context, result domain.Result) error {
	payloads, err := buildPayloads(p.keys, result)
	if err != nil {
		return err
	}

	_, err = p.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, data := range payloads {
			pipe.Set(ctx, key, data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: %w", err)
	}

	notice, err := json.Marshal(runNotice{
		GeneratedAt: result.GeneratedAt,
		Vessels:     len(result.RankedVessels),
		Kept:        result.Stats.Kept,
	})
	if err != nil {
		return fmt.Errorf("serialize run notice: %w", err)
	}
	if err := p.client.Publish(ctx, p.keys.Channel, notice).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	p.logger.Debug("result stored in redis", "channel", p.keys.Channel, "keys", len(payloads))
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

func buildPayloads(keys keySet, result domain.Result) (map[string][]byte, error) {
	parts := map[string]any{
		keys.Ranking: result.RankedVessels,
		keys.Reports: result.RankedVesselReports,
		keys.Density: result.HourlyDensity,
		keys.Stats:   result.Stats,
	}
	out := make(map[string][]byte, len(parts))
	for key, v := range parts {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}

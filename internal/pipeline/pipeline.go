package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	"github.com/couchcryptid/ais-pollution-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Extractor reads one complete batch of AIS records from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RecordBatch, error)
}

// Transformer turns a record batch into the scored, ranked and binned result.
type Transformer interface {
	Transform(ctx context.Context, batch domain.RecordBatch) (domain.Result, error)
}

// Loader hands a result to one presentation collaborator.
type Loader interface {
	Load(ctx context.Context, result domain.Result) error
}

const (
	defaultLoadAttempts = 3
	defaultBackoff      = 200 * time.Millisecond
	maxBackoff          = 5 * time.Second
)

// Option tunes a Pipeline.
type Option func(*Pipeline)

// WithLoadRetry sets how many times each loader is tried and the initial
// backoff between attempts.
func WithLoadRetry(attempts int, backoff time.Duration) Option {
	return func(p *Pipeline) {
		if attempts > 0 {
			p.loadAttempts = attempts
		}
		p.backoff = backoff
	}
}

// Pipeline orchestrates one extract-score-load run and keeps the latest
// result for readers.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics

	loadAttempts int
	backoff      time.Duration
	latest       atomic.Pointer[domain.Result]
}

// New creates a Pipeline with the given stages and observability. Loaders run
// in order; any of them may be omitted.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:    e,
		transformer:  t,
		loaders:      loaders,
		logger:       logger,
		metrics:      metrics,
		loadAttempts: defaultLoadAttempts,
		backoff:      defaultBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has produced a result.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("pipeline has not produced a result yet")
	}
	return nil
}

// Latest returns the most recent result, if any.
func (p *Pipeline) Latest() (domain.Result, bool) {
	r := p.latest.Load()
	if r == nil {
		return domain.Result{}, false
	}
	return *r, true
}

// Run performs a single extract-score-load cycle. The result becomes visible
// through Latest as soon as scoring succeeds, before it is loaded. The source
// batch is committed only after every loader succeeded.
func (p *Pipeline) Run(ctx context.Context) (domain.Result, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	batch, err := p.extractor.Extract(ctx)
	if err != nil {
		p.metrics.RunErrors.WithLabelValues("extract").Inc()
		return domain.Result{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RecordsExtracted.Add(float64(len(batch.Records)))

	result, err := p.transformer.Transform(ctx, batch)
	if err != nil {
		p.metrics.RunErrors.WithLabelValues("process").Inc()
		return domain.Result{}, fmt.Errorf("process: %w", err)
	}
	p.observe(result)
	p.latest.Store(&result)

	for _, l := range p.loaders {
		if err := p.loadWithRetry(ctx, l, result); err != nil {
			p.metrics.RunErrors.WithLabelValues("load").Inc()
			return result, fmt.Errorf("load: %w", err)
		}
	}

	if batch.Commit != nil {
		if err := batch.Commit(ctx); err != nil {
			p.metrics.RunErrors.WithLabelValues("commit").Inc()
			p.logger.Warn("commit batch failed", "error", err)
		}
	}

	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	p.logger.Info("run complete",
		"records", result.Stats.Records,
		"kept", result.Stats.Kept,
		"vessels", result.Stats.Vessels,
		"ranked", len(result.RankedVessels),
		"ranked_reports", len(result.RankedVesselReports),
		"duration", elapsed,
	)
	return result, nil
}

// observe records data-quality metrics and warnings for a fresh result.
func (p *Pipeline) observe(result domain.Result) {
	s := result.Stats
	p.metrics.RecordsKept.Add(float64(s.Kept))
	p.metrics.RecordsDropped.Add(float64(s.Records - s.Kept))
	p.metrics.VesselsRanked.Set(float64(len(result.RankedVessels)))

	for _, f := range s.DegenerateFields {
		p.metrics.DegenerateFields.WithLabelValues(f).Inc()
		p.logger.Warn("degenerate field normalized to zero", "field", f)
	}
	if n := len(s.InconsistentVessels); n > 0 {
		p.metrics.InconsistentVessels.Add(float64(n))
		p.logger.Warn("vessels report inconsistent dimensions", "mmsi", s.InconsistentVessels)
	}
	if result.Empty() {
		p.metrics.EmptyResults.Inc()
		p.logger.Warn("run produced no output", "error", domain.ErrEmptyResult, "records", s.Records)
	}
}

func (p *Pipeline) loadWithRetry(ctx context.Context, l Loader, result domain.Result) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.loadAttempts; attempt++ {
		if err = l.Load(ctx, result); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
		p.logger.Error("load failed", "loader", fmt.Sprintf("%T", l), "attempt", attempt, "error", err)
		if attempt == p.loadAttempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return errors.Join(err, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}

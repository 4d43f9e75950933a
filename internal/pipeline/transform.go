package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
)

// ScoringTransformer implements Transformer using the domain scoring functions
// with optional geocoding of the ranked vessels.
type ScoringTransformer struct {
	opts     domain.Options
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a ScoringTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(opts domain.Options, geocoder domain.Geocoder, logger *slog.Logger) *ScoringTransformer {
	return &ScoringTransformer{
		opts:     opts,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *ScoringTransformer) Transform(ctx context.Context, batch domain.RecordBatch) (domain.Result, error) {
	result, err := domain.Process(batch, t.opts)
	if err != nil {
		return domain.Result{}, err
	}
	result.RankedVessels = domain.EnrichWithGeocoding(ctx, result.RankedVessels, t.geocoder, t.logger)
	return result, nil
}

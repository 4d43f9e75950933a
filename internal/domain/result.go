package domain

import (
	"fmt"
	"time"
)

// Options tunes the aggregation stages.
type Options struct {
	TopK       int
	ThinStride int
}

// DefaultOptions returns the reference ranking settings.
func DefaultOptions() Options {
	return Options{TopK: DefaultTopK, ThinStride: DefaultThinStride}
}

// Stats summarizes a run for logs and metrics.
type Stats struct {
	Records             int      `json:"records"`
	Kept                int      `json:"kept"`
	Vessels             int      `json:"vessels"`
	DegenerateFields    []string `json:"degenerate_fields,omitempty"`
	InconsistentVessels []int64  `json:"inconsistent_vessels,omitempty"`
}

// Result is everything a pipeline run hands to presentation collaborators.
type Result struct {
	RankedVessels       []RankedVessel       `json:"ranked_vessels"`
	RankedVesselReports []RankedVesselReport `json:"ranked_vessel_reports"`
	HourlyDensity       HourlyDensity        `json:"hourly_density"`
	Stats               Stats                `json:"stats"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// Empty reports whether no record survived filtering.
func (r Result) Empty() bool {
	return r.Stats.Kept == 0
}

// Process runs the full scoring pipeline over one record batch:
// schema check, parse, filter, normalize, score, then rank and bin.
// Schema and timestamp errors abort with no partial output. An input where
// nothing survives filtering is not an error: the result has an empty ranking
// and 24 empty buckets.
func Process(batch RecordBatch, opts Options) (Result, error) {
	if len(batch.Columns) > 0 || len(batch.Records) > 0 {
		if err := CheckSchema(batch.Columns); err != nil {
			return Result{}, err
		}
	}

	kept, err := Filter(ParseAISRecords(batch.Records))
	if err != nil {
		return Result{}, fmt.Errorf("filter reports: %w", err)
	}

	normalized, degenerate := Normalize(kept)
	scored, emissionsDegenerate := Score(normalized)
	if emissionsDegenerate {
		degenerate = append(degenerate, FieldEmissions)
	}

	ranked := RankVessels(scored, opts.TopK)
	reports := Thin(JoinRankedReports(ranked, scored), opts.ThinStride)

	return Result{
		RankedVessels:       ranked,
		RankedVesselReports: reports,
		HourlyDensity:       BinHourly(scored),
		Stats: Stats{
			Records:             len(batch.Records),
			Kept:                len(kept),
			Vessels:             len(VesselRanking(scored)),
			DegenerateFields:    degenerate,
			InconsistentVessels: InconsistentVessels(kept),
		},
		GeneratedAt: clock.Now().UTC(),
	}, nil
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ais_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the scoring pipeline.
type Metrics struct {
	RecordsExtracted prometheus.Counter
	RecordsKept      prometheus.Counter
	RecordsDropped   prometheus.Counter
	VesselsRanked    prometheus.Gauge
	PipelineRunning  prometheus.Gauge

	// Data quality.
	DegenerateFields    *prometheus.CounterVec // labels: field={width,length,sog,emissions}
	InconsistentVessels prometheus.Counter
	EmptyResults        prometheus.Counter

	// Run outcomes.
	RunErrors   *prometheus.CounterVec // labels: stage={extract,process,load,commit}
	RunDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "Total AIS records read from the source.",
		}),
		RecordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_kept_total",
			Help:      "Total AIS records that survived validation.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Total AIS records dropped by validation.",
		}),
		VesselsRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vessels_ranked",
			Help:      "Number of vessels in the latest top-K ranking.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a scoring run is in progress, 0 otherwise.",
		}),
		DegenerateFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_fields_total",
			Help:      "Normalizations skipped because every value of the field was equal.",
		}, []string{"field"}),
		InconsistentVessels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inconsistent_vessels_total",
			Help:      "Vessels whose reports disagree on width or length.",
		}),
		EmptyResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_results_total",
			Help:      "Runs in which no record survived filtering.",
		}),
		RunErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_errors_total",
			Help:      "Run failures by pipeline stage.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-score-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsExtracted,
		m.RecordsKept,
		m.RecordsDropped,
		m.VesselsRanked,
		m.PipelineRunning,
		m.DegenerateFields,
		m.InconsistentVessels,
		m.EmptyResults,
		m.RunErrors,
		m.RunDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsExtracted:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_extracted_total"}),
		RecordsKept:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_kept_total"}),
		RecordsDropped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_dropped_total"}),
		VesselsRanked:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "vessels_ranked"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		DegenerateFields:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "degenerate_fields_total"}, []string{"field"}),
		InconsistentVessels: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "inconsistent_vessels_total"}),
		EmptyResults:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "empty_results_total"}),
		RunErrors:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "run_errors_total"}, []string{"stage"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "run_duration_seconds"}),
		GeocodeRequests:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}

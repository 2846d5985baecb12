package vapeindex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes run counters for the orchestrator. All metrics are
// optional; a nil *Metrics disables instrumentation.
type Metrics struct {
	StoresProcessed prometheus.Counter
	StoresSkipped   prometheus.Counter
	StoreDuration   prometheus.Histogram
	PanelRows       prometheus.Gauge
}

// NewMetrics registers the pipeline metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StoresProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vapeidx",
			Name:      "stores_processed_total",
			Help:      "Number of stores with a computed index.",
		}),
		StoresSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vapeidx",
			Name:      "stores_skipped_total",
			Help:      "Number of stores skipped for empty scan-type or subcategory subsets.",
		}),
		StoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vapeidx",
			Name:      "store_build_duration_seconds",
			Help:      "Wall time spent building one store's index.",
			Buckets:   prometheus.DefBuckets,
		}),
		PanelRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "vapeidx",
			Name:      "panel_rows",
			Help:      "Rows in the assembled panel after deduplication.",
		}),
	}
}

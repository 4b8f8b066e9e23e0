package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Navigations     *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	ElementsScanned prometheus.Histogram
	NodesRendered   prometheus.Histogram
	Truncations     *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Navigations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webgu_navigations_total",
			Help: "Navigations by outcome.",
		}, []string{"result"}), // done, failed, superseded
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webgu_cache_lookups_total",
			Help: "Page cache lookups by result.",
		}, []string{"result"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webgu_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		}, []string{"stage"}),
		ElementsScanned: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "webgu_elements_scanned",
			Help:    "Elements produced per scan.",
			Buckets: []float64{0, 10, 50, 100, 250, 500},
		}),
		NodesRendered: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "webgu_nodes_rendered",
			Help:    "Element nodes produced per projection.",
			Buckets: []float64{0, 10, 25, 50, 100},
		}),
		Truncations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "webgu_truncations_total",
			Help: "Pages cut short by the scan or render cap.",
		}, []string{"cap"}), // scan, render
	}
}

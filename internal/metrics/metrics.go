// Package metrics exposes Prometheus counters for library imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives import events. Collector is the Prometheus implementation;
// Nop discards everything.
type Recorder interface {
	RecordRow(stage, outcome string)
	RecordBatch(source string, imported, failed int, duration time.Duration)
	RecordProviderSearch(provider string, err error, duration time.Duration)
}

// Row stages and outcomes.
const (
	StageResolve   = "resolve"
	StageReconcile = "reconcile"
	StagePanic     = "panic"

	OutcomeImported = "imported"
	OutcomeFailed   = "failed"
)

type Collector struct {
	rows            *prometheus.CounterVec
	batches         *prometheus.CounterVec
	booksImported   prometheus.Counter
	booksFailed     prometheus.Counter
	batchDuration   prometheus.Histogram
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_import_rows_total",
			Help: "Processed import rows by stage and outcome.",
		}, []string{"stage", "outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_import_batches_total",
			Help: "Completed import batches by source.",
		}, []string{"source"}),
		booksImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "readtrack_import_books_imported_total",
			Help: "Books imported successfully.",
		}),
		booksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "readtrack_import_books_failed_total",
			Help: "Books that failed to import.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "readtrack_import_batch_duration_seconds",
			Help:    "Wall time of an import batch.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readtrack_metadata_search_total",
			Help: "Metadata provider searches by provider and result.",
		}, []string{"provider", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "readtrack_metadata_search_latency_seconds",
			Help:    "Metadata provider search latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.rows,
		c.batches,
		c.booksImported,
		c.booksFailed,
		c.batchDuration,
		c.providerCalls,
		c.providerLatency,
	)

	return c
}

func (c *Collector) RecordRow(stage, outcome string) {
	c.rows.WithLabelValues(stage, outcome).Inc()
}

func (c *Collector) RecordBatch(source string, imported, failed int, duration time.Duration) {
	c.batches.WithLabelValues(source).Inc()
	c.booksImported.Add(float64(imported))
	c.booksFailed.Add(float64(failed))
	c.batchDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordProviderSearch(provider string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.providerCalls.WithLabelValues(provider, result).Inc()
	c.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) RecordRow(string, string)                          {}
func (Nop) RecordBatch(string, int, int, time.Duration)       {}
func (Nop) RecordProviderSearch(string, error, time.Duration) {}

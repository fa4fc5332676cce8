// Package metrics exposes retrieval and completion counters in the
// Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aptutor/internal/domain"
)

const namespace = "aptutor"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	retrievals         *prometheus.CounterVec
	retrievalDuration  prometheus.Histogram
	completions        *prometheus.CounterVec
	completionDuration prometheus.Histogram
	indexSize          *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Context lookups by outcome.",
		}, []string{"result"}),
		retrievalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Time spent scoring and assembling context.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion requests by status.",
		}, []string{"status"}),
		completionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of the remote completion call.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		indexSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_size",
			Help:      "Size of the in-memory index.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.retrievals,
		m.retrievalDuration,
		m.completions,
		m.completionDuration,
		m.indexSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRetrieval(found bool, elapsed time.Duration) {
	result := "absent"
	if found {
		result = "found"
	}
	m.retrievals.WithLabelValues(result).Inc()
	m.retrievalDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCompletion(err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.completions.WithLabelValues(status).Inc()
	m.completionDuration.Observe(elapsed.Seconds())
}

// SetIndexStats publishes the size of a freshly built index.
func (m *Metrics) SetIndexStats(stats domain.Stats) {
	m.indexSize.WithLabelValues("documents").Set(float64(stats.TotalDocs))
	m.indexSize.WithLabelValues("chunks").Set(float64(stats.TotalChunks))
	m.indexSize.WithLabelValues("tokens").Set(float64(stats.TotalTokens))
	m.indexSize.WithLabelValues("skipped_documents").Set(float64(stats.SkippedDocs))
}

// CacheSource reports query cache effectiveness.
type CacheSource interface {
	Hits() uint64
	Misses() uint64
}

// RegisterCache exports the hit and miss counts of a query cache.
func (m *Metrics) RegisterCache(src CacheSource) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Searches answered from the query cache.",
		}, func() float64 { return float64(src.Hits()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Searches that reached the index.",
		}, func() float64 { return float64(src.Misses()) }),
	)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

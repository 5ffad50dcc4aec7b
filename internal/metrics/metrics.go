// Package metrics provides the centralized Prometheus registry for the
// motorsport cache service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "cache_hits_total",
		Help:      "Reads served from the local store without an upstream fetch",
	}, []string{"aggregate"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "cache_misses_total",
		Help:      "Reads that triggered an upstream refetch",
	}, []string{"aggregate"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "upstream_requests_total",
		Help:      "Requests issued against the upstream motorsport API",
	}, []string{"endpoint"})
	RowsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pitwall",
		Name:      "rows_written_total",
		Help:      "Rows inserted or upserted per table",
	}, []string{"table"})
)

// Histogram metrics
var (
	IngestionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pitwall",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of full fetch-reconcile-persist cycles in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"pipeline"})
)

// Registry returns the global metrics registry, initializing it on first use
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			CacheHitsTotal,
			CacheMissesTotal,
			UpstreamRequestsTotal,
			RowsWrittenTotal,
			IngestionDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}

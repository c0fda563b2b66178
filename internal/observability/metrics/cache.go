// Package metrics provides cache metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics contains Prometheus metrics for the resolver and query caches
type CacheMetrics struct {
	registry *prometheus.Registry

	// Cache operation metrics
	cacheOperationsTotal *prometheus.CounterVec

	// Cache size metrics
	cacheEntriesGauge *prometheus.GaugeVec

	// Prune metrics
	cachePrunedTotal prometheus.Counter
}

// NewCacheMetrics creates and registers new cache metrics
func NewCacheMetrics(registry *prometheus.Registry) (*CacheMetrics, error) {
	m := &CacheMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *CacheMetrics) initMetrics() error {
	m.cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"cache", "outcome"}, // cache: source, resolution; outcome: hit, miss, stored
	)

	m.cacheEntriesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sxcat_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	m.cachePrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sxcat_cache_pruned_total",
		Help: "Total number of cache entries removed by pruning",
	})

	return nil
}

// Describe implements the Collector interface
func (m *CacheMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.cacheOperationsTotal.Describe(ch)
	m.cacheEntriesGauge.Describe(ch)
	m.cachePrunedTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *CacheMetrics) Collect(ch chan<- prometheus.Metric) {
	m.cacheOperationsTotal.Collect(ch)
	m.cacheEntriesGauge.Collect(ch)
	m.cachePrunedTotal.Collect(ch)
}

// RecordCacheOperation records a cache operation outcome
func (m *CacheMetrics) RecordCacheOperation(cache, outcome string) {
	m.cacheOperationsTotal.WithLabelValues(cache, outcome).Inc()
}

// UpdateCacheEntries updates the current entry count for a cache
func (m *CacheMetrics) UpdateCacheEntries(cache string, entries int64) {
	m.cacheEntriesGauge.WithLabelValues(cache).Set(float64(entries))
}

// RecordCachePruned records entries removed by a prune pass
func (m *CacheMetrics) RecordCachePruned(removed int64) {
	m.cachePrunedTotal.Add(float64(removed))
}

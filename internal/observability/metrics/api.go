// Package metrics provides catalogue query metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics contains Prometheus metrics for catalogue query operations
type APIMetrics struct {
	registry *prometheus.Registry

	// Query operation metrics
	apiCallsTotal   *prometheus.CounterVec
	apiErrorsTotal  *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec

	// Rate limiter metrics
	apiThrottleWaits prometheus.Counter
}

// NewAPIMetrics creates and registers new catalogue query metrics
func NewAPIMetrics(registry *prometheus.Registry) (*APIMetrics, error) {
	m := &APIMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *APIMetrics) initMetrics() error {
	m.apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_api_calls_total",
			Help: "Total number of catalogue query operations",
		},
		[]string{"op", "status"}, // status: success, error
	)

	m.apiErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_api_errors_total",
			Help: "Total number of catalogue query errors",
		},
		[]string{"op", "error_type"},
	)

	m.apiCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sxcat_api_call_duration_seconds",
			Help: "Time taken for catalogue query operations",
			// Buckets cover typical query response times: 100ms to ~100s
			// Exponential buckets: 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6, 51.2s
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"op"},
	)

	m.apiThrottleWaits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sxcat_api_throttle_waits_total",
		Help: "Total number of requests delayed by the client-side rate limiter",
	})

	return nil
}

// Describe implements the Collector interface
func (m *APIMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.apiCallsTotal.Describe(ch)
	m.apiErrorsTotal.Describe(ch)
	m.apiCallDuration.Describe(ch)
	m.apiThrottleWaits.Describe(ch)
}

// Collect implements the Collector interface
func (m *APIMetrics) Collect(ch chan<- prometheus.Metric) {
	m.apiCallsTotal.Collect(ch)
	m.apiErrorsTotal.Collect(ch)
	m.apiCallDuration.Collect(ch)
	m.apiThrottleWaits.Collect(ch)
}

// RecordOperation records a query operation with its status
func (m *APIMetrics) RecordOperation(operation, status string) {
	m.apiCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration records the duration of a query operation in seconds
func (m *APIMetrics) RecordDuration(operation string, seconds float64) {
	m.apiCallDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError records a query error occurrence with its type
func (m *APIMetrics) RecordError(operation, errorType string) {
	m.apiErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordThrottleWait records a request delayed by the rate limiter
func (m *APIMetrics) RecordThrottleWait() {
	m.apiThrottleWaits.Inc()
}

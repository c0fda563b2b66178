// Package metrics provides upper-limit job metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// UpperLimitMetrics contains Prometheus metrics for server-side upper-limit jobs
type UpperLimitMetrics struct {
	registry *prometheus.Registry

	// Job lifecycle metrics
	jobsSubmittedTotal *prometheus.CounterVec
	jobPollsTotal      *prometheus.CounterVec
	jobWaitDuration    prometheus.Histogram
}

// NewUpperLimitMetrics creates and registers new upper-limit job metrics
func NewUpperLimitMetrics(registry *prometheus.Registry) (*UpperLimitMetrics, error) {
	m := &UpperLimitMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *UpperLimitMetrics) initMetrics() error {
	m.jobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_ulimit_jobs_submitted_total",
			Help: "Total number of upper-limit computations submitted",
		},
		[]string{"mode"}, // mode: immediate, deferred
	)

	m.jobPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_ulimit_job_polls_total",
			Help: "Total number of upper-limit job status polls",
		},
		[]string{"status"}, // status: pending, ready, consumed, error
	)

	m.jobWaitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "sxcat_ulimit_job_wait_seconds",
		Help: "Time from job submission until its result was fetched",
		// Buckets cover typical server compute times: 1s to ~8.5min
		// Exponential buckets: 1, 2, 4, 8, 16, 32, 64, 128, 256, 512s
		Buckets: prometheus.ExponentialBuckets(BucketStart1s, BucketFactor2, BucketCount10),
	})

	return nil
}

// Describe implements the Collector interface
func (m *UpperLimitMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.jobsSubmittedTotal.Describe(ch)
	m.jobPollsTotal.Describe(ch)
	m.jobWaitDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *UpperLimitMetrics) Collect(ch chan<- prometheus.Metric) {
	m.jobsSubmittedTotal.Collect(ch)
	m.jobPollsTotal.Collect(ch)
	m.jobWaitDuration.Collect(ch)
}

// RecordJobSubmitted records an upper-limit submission
func (m *UpperLimitMetrics) RecordJobSubmitted(mode string) {
	m.jobsSubmittedTotal.WithLabelValues(mode).Inc()
}

// RecordJobPoll records one status poll and its reported state
func (m *UpperLimitMetrics) RecordJobPoll(status string) {
	m.jobPollsTotal.WithLabelValues(status).Inc()
}

// RecordJobWait records how long a deferred job took end to end
func (m *UpperLimitMetrics) RecordJobWait(seconds float64) {
	m.jobWaitDuration.Observe(seconds)
}

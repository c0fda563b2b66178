// Package metrics provides product download metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DownloadMetrics contains Prometheus metrics for product file downloads
type DownloadMetrics struct {
	registry *prometheus.Registry

	// Download operation metrics
	downloadsTotal     *prometheus.CounterVec
	downloadBytesTotal *prometheus.CounterVec
	downloadDuration   *prometheus.HistogramVec
}

// NewDownloadMetrics creates and registers new download metrics
func NewDownloadMetrics(registry *prometheus.Registry) (*DownloadMetrics, error) {
	m := &DownloadMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DownloadMetrics) initMetrics() error {
	m.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_downloads_total",
			Help: "Total number of product file download operations",
		},
		[]string{"scheme", "outcome"}, // scheme: http, https, ftp; outcome: saved, skipped, error
	)

	m.downloadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxcat_download_bytes_total",
			Help: "Total bytes written by product file downloads",
		},
		[]string{"scheme"},
	)

	m.downloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sxcat_download_duration_seconds",
			Help: "Time taken to fetch and save a product file",
			// Buckets cover typical transfer times: 100ms to ~100s
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"scheme"},
	)

	return nil
}

// Describe implements the Collector interface
func (m *DownloadMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.downloadsTotal.Describe(ch)
	m.downloadBytesTotal.Describe(ch)
	m.downloadDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *DownloadMetrics) Collect(ch chan<- prometheus.Metric) {
	m.downloadsTotal.Collect(ch)
	m.downloadBytesTotal.Collect(ch)
	m.downloadDuration.Collect(ch)
}

// RecordDownload records a download operation outcome
func (m *DownloadMetrics) RecordDownload(scheme, outcome string) {
	m.downloadsTotal.WithLabelValues(scheme, outcome).Inc()
}

// RecordDownloadBytes records bytes written by a download
func (m *DownloadMetrics) RecordDownloadBytes(scheme string, bytes int64) {
	m.downloadBytesTotal.WithLabelValues(scheme).Add(float64(bytes))
}

// RecordDownloadDuration records the duration of a download in seconds
func (m *DownloadMetrics) RecordDownloadDuration(scheme string, seconds float64) {
	m.downloadDuration.WithLabelValues(scheme).Observe(seconds)
}

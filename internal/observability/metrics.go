// Package observability provides metrics and monitoring capabilities for the sxcat client.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/sxcat-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the client.
type Metrics struct {
	registry   *prometheus.Registry
	API        *metrics.APIMetrics
	Cache      *metrics.CacheMetrics
	Download   *metrics.DownloadMetrics
	UpperLimit *metrics.UpperLimitMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	apiMetrics, err := metrics.NewAPIMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create API metrics: %w", err)
	}

	cacheMetrics, err := metrics.NewCacheMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache metrics: %w", err)
	}

	downloadMetrics, err := metrics.NewDownloadMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create download metrics: %w", err)
	}

	upperLimitMetrics, err := metrics.NewUpperLimitMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create upper-limit metrics: %w", err)
	}

	return &Metrics{
		registry:   registry,
		API:        apiMetrics,
		Cache:      cacheMetrics,
		Download:   downloadMetrics,
		UpperLimit: upperLimitMetrics,
	}, nil
}

// Gatherer exposes the underlying registry so callers can merge these
// metrics into their own Prometheus setup.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Describe implements the prometheus.Collector interface by delegating to
// every collector, so the aggregate can be registered on an external
// registry as one unit.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.API.Describe(ch)
	m.Cache.Describe(ch)
	m.Download.Describe(ch)
	m.UpperLimit.Describe(ch)
}

// Collect implements the prometheus.Collector interface by delegating to
// every collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.API.Collect(ch)
	m.Cache.Collect(ch)
	m.Download.Collect(ch)
	m.UpperLimit.Collect(ch)
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", m.metricsHandler)
}

// metricsHandler is the HTTP handler for the /metrics endpoint.
func (m *Metrics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	h.ServeHTTP(w, r)
}

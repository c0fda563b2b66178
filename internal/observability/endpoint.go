// Package observability provides Prometheus metrics functionality for monitoring the sxcat client.
package observability

import (
	"context"
	"net"
	"net/http"

	metricspkg "github.com/tphakala/sxcat-go/internal/observability/metrics"
)

// Endpoint serves the Prometheus-compatible telemetry over HTTP. Long batch
// sessions enable it to watch query rates and download progress from outside
// the process. An endpoint belongs to one client and lives as long as it.
type Endpoint struct {
	listenAddress string

	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewEndpoint creates a telemetry Endpoint for the given listen address.
func NewEndpoint(listenAddress string) *Endpoint {
	return &Endpoint{listenAddress: listenAddress}
}

// Start binds the listen address and serves the metrics routes in a
// background goroutine. The bound address is available from Addr afterwards.
func (e *Endpoint) Start(metrics *Metrics) error {
	listener, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	metrics.RegisterHandlers(mux)

	e.listener = listener
	e.server = &http.Server{Handler: mux}
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)
		obsLogger.Info("telemetry endpoint starting", "address", listener.Addr().String())
		if err := e.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			obsLogger.Error("telemetry HTTP server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, useful when the configured address
// left the port choice to the kernel. Nil before Start.
func (e *Endpoint) Addr() net.Addr {
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Close shuts the server down gracefully and waits for the serve goroutine
// to finish.
func (e *Endpoint) Close() error {
	if e.server == nil {
		return nil
	}

	obsLogger.Info("stopping telemetry server")
	ctx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()

	err := e.server.Shutdown(ctx)
	<-e.done
	e.server = nil
	return err
}

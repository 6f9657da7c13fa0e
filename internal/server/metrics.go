package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
)

// DefaultMetricsAddr is the default listen address for the metrics server.
const DefaultMetricsAddr = ":9090"

// DefaultShutdownTimeout bounds graceful shutdown of the HTTP listeners.
const DefaultShutdownTimeout = 30 * time.Second

// MetricsServerConfig holds configuration for the metrics HTTP server.
type MetricsServerConfig struct {
	// Addr is the listen address. Defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider supplies the metrics being exposed.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves Prometheus metrics and a basic health endpoint on
// a dedicated listener, separate from the MCP transport.
type MetricsServer struct {
	addr     string
	provider *instrumentation.Provider
	server   *http.Server
}

// NewMetricsServer creates a MetricsServer from the given configuration.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	// The OTel prometheus exporter registers with the default registry,
	// which promhttp.Handler exposes.
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr:     addr,
		provider: config.InstrumentationProvider,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (m *MetricsServer) Addr() string {
	return m.addr
}

// Start begins serving and blocks until the server stops. It returns
// http.ErrServerClosed after a clean Shutdown.
func (m *MetricsServer) Start() error {
	return m.server.ListenAndServe()
}

// Shutdown gracefully stops the metrics server. Calling Shutdown on a
// server that was never started is a no-op.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

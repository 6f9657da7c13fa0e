package cmd

import (
	"fmt"

	"github.com/giantswarm/mcp-vsphere/internal/server/middleware"
)

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Safety settings for mutating vSphere operations
	NonDestructiveMode bool
	DryRun             bool
	AllowedOperations  []string

	// AllowedOrigins is a comma-separated list of origins allowed to make
	// cross-origin requests to the HTTP transports. Empty means no CORS
	// headers are emitted.
	AllowedOrigins string

	DebugMode bool

	// Metrics configures the dedicated metrics listener.
	Metrics MetricsServeConfig
}

// MetricsServeConfig holds configuration for the dedicated metrics server.
type MetricsServeConfig struct {
	// Enabled starts the metrics server alongside HTTP transports. It only
	// takes effect when instrumentation is enabled.
	Enabled bool

	// Addr is the metrics listen address. Empty falls back to the server
	// package default.
	Addr string
}

// Validate checks the serve configuration before any server is started so
// operators see configuration mistakes immediately.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			c.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}

	if _, err := middleware.ValidateAllowedOrigins(c.AllowedOrigins); err != nil {
		return fmt.Errorf("invalid allowed origins: %w", err)
	}

	return nil
}

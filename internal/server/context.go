package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/logging"
	"github.com/giantswarm/mcp-vsphere/internal/vsphere"
)

// Common errors returned by ServerContext operations.
var (
	ErrMissingDialer  = errors.New("vsphere dialer is required")
	ErrMissingLogger  = errors.New("logger is required")
	ErrMissingConfig  = errors.New("configuration is required")
	ErrServerShutdown = errors.New("server is shutting down")
)

// Logger defines the logging interface used throughout the server. It
// extends the leveled logging.Logger with attribute chaining.
type Logger interface {
	logging.Logger
	With(args ...any) Logger
}

// Config holds server-level configuration.
type Config struct {
	// ServerName is the name advertised during the MCP handshake
	ServerName string

	// Version is the server version
	Version string

	// NonDestructiveMode prevents destructive operations when enabled
	NonDestructiveMode bool

	// DryRun mode validates mutating operations without executing them
	DryRun bool

	// AllowedOperations lists operations permitted even in non-destructive mode
	AllowedOperations []string

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string

	// LogFormat sets the log output format (text, json)
	LogFormat string
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:         "mcp-vsphere",
		Version:            "dev",
		NonDestructiveMode: false,
		DryRun:             false,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.AllowedOperations != nil {
		clone.AllowedOperations = make([]string, len(c.AllowedOperations))
		copy(clone.AllowedOperations, c.AllowedOperations)
	}
	return &clone
}

// ServerContext encapsulates the dependencies and lifecycle of the MCP
// vSphere server. Dependencies are injected via functional options and
// accessed through getter methods, keeping tool handlers decoupled from
// construction details.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	dialer        vsphere.Dialer
	locator       *vsphere.Locator
	vsphereConfig *vsphere.Config

	logger Logger
	config *Config

	instrumentationProvider *instrumentation.Provider

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext with the given options.
// A dialer, logger, and configuration are required; everything else is
// optional.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	childCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    childCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to apply server option: %w", err)
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// validate ensures all required dependencies are present.
func (sc *ServerContext) validate() error {
	if sc.dialer == nil {
		return ErrMissingDialer
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Context returns the server's context for cancellation propagation.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Dialer returns the vCenter connection dialer.
func (sc *ServerContext) Dialer() vsphere.Dialer {
	return sc.dialer
}

// Locator returns the MAC address locator.
func (sc *ServerContext) Locator() *vsphere.Locator {
	return sc.locator
}

// VSphereConfig returns the vCenter connection configuration.
func (sc *ServerContext) VSphereConfig() *vsphere.Config {
	return sc.vsphereConfig
}

// Logger returns the configured logger.
func (sc *ServerContext) Logger() Logger {
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	return sc.config
}

// InstrumentationProvider returns the instrumentation provider, which may
// be nil when instrumentation was never configured.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	return sc.instrumentationProvider
}

// Metrics returns the metrics recorder. It never returns nil: without a
// provider it hands out a no-op recorder so call sites need no branching.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instrumentationProvider == nil {
		return &instrumentation.Metrics{}
	}
	return sc.instrumentationProvider.Metrics()
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and marks the server as shutting
// down. It is safe to call multiple times.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()

	if sc.logger != nil {
		sc.logger.Info("server context shut down")
	}
	return nil
}

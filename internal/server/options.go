package server

import (
	"log/slog"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/logging"
	"github.com/giantswarm/mcp-vsphere/internal/vsphere"
)

// Option configures a ServerContext during construction.
type Option func(*ServerContext) error

// WithDialer sets the vCenter connection dialer.
func WithDialer(dialer vsphere.Dialer) Option {
	return func(sc *ServerContext) error {
		sc.dialer = dialer
		return nil
	}
}

// WithLocator sets the MAC address locator.
func WithLocator(locator *vsphere.Locator) Option {
	return func(sc *ServerContext) error {
		sc.locator = locator
		return nil
	}
}

// WithVSphereConfig sets the vCenter connection configuration.
func WithVSphereConfig(cfg *vsphere.Config) Option {
	return func(sc *ServerContext) error {
		sc.vsphereConfig = cfg
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(sc *ServerContext) error {
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the complete server configuration. The config is cloned
// to prevent external mutation after construction.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name advertised during the MCP handshake.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		sc.config.ServerName = name
		return nil
	}
}

// WithVersion sets the server version.
func WithVersion(version string) Option {
	return func(sc *ServerContext) error {
		sc.config.Version = version
		return nil
	}
}

// WithNonDestructiveMode enables or disables non-destructive mode.
func WithNonDestructiveMode(enabled bool) Option {
	return func(sc *ServerContext) error {
		sc.config.NonDestructiveMode = enabled
		return nil
	}
}

// WithDryRun enables or disables dry-run mode.
func WithDryRun(enabled bool) Option {
	return func(sc *ServerContext) error {
		sc.config.DryRun = enabled
		return nil
	}
}

// WithAllowedOperations sets the operations permitted even in
// non-destructive mode.
func WithAllowedOperations(operations []string) Option {
	return func(sc *ServerContext) error {
		sc.config.AllowedOperations = operations
		return nil
	}
}

// WithLogLevel sets the logging verbosity.
func WithLogLevel(level string) Option {
	return func(sc *ServerContext) error {
		sc.config.LogLevel = level
		return nil
	}
}

// WithInstrumentationProvider sets the instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// slogLogger adapts *slog.Logger to the Logger interface, layering With on
// top of the shared logging adapter.
type slogLogger struct {
	*logging.SlogAdapter
}

// NewSlogLogger wraps a *slog.Logger as a Logger. A nil logger falls back
// to slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	return &slogLogger{SlogAdapter: logging.NewSlogAdapter(logger)}
}

// NewDefaultLogger returns a Logger backed by the process-wide slog default.
func NewDefaultLogger() Logger {
	return NewSlogLogger(nil)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{SlogAdapter: logging.NewSlogAdapter(l.Logger().With(args...))}
}

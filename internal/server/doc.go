// Package server provides the ServerContext pattern and related infrastructure
// for the MCP vSphere server.
//
// This package implements the core server architecture patterns including:
//
//   - ServerContext: Encapsulates all server dependencies and lifecycle management
//   - Functional Options: Clean dependency injection and configuration
//   - Logger Interface: Abstraction for logging operations
//   - HealthChecker: Liveness and readiness endpoints for probes
//   - MetricsServer: Dedicated Prometheus metrics listener
//
// The ServerContext Pattern:
//
// The ServerContext struct follows the context pattern commonly used in Go
// applications to encapsulate dependencies and provide clean separation of
// concerns. It includes:
//
//   - vCenter dialer and MAC address locator
//   - Logger interface
//   - Configuration settings
//   - Context for cancellation and timeouts
//   - Lifecycle management (shutdown, cleanup)
//
// All dependencies are injected using functional options, making the code
// highly testable and modular.
//
// Example usage:
//
//	ctx := context.Background()
//	serverCtx, err := NewServerContext(ctx,
//		WithDialer(dialer),
//		WithVSphereConfig(cfg),
//		WithLogger(NewSlogLogger(logger)),
//		WithNonDestructiveMode(true),
//		WithLogLevel("debug"),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
//	// Use the context in MCP tools
//	dialer := serverCtx.Dialer()
//	logger := serverCtx.Logger()
//	config := serverCtx.Config()
//
//	// Check if server is shutting down
//	if serverCtx.IsShutdown() {
//		return ErrServerShutdown
//	}
//
// The Config struct provides centralized configuration with sensible defaults:
// server identity (name, version), non-destructive and dry-run modes, and
// logging settings. It supports cloning to prevent accidental mutation.
package server

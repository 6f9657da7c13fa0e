package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/logging"
	"github.com/giantswarm/mcp-vsphere/internal/server"
	"github.com/giantswarm/mcp-vsphere/internal/tools/vm"
	"github.com/giantswarm/mcp-vsphere/internal/vsphere"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	var (
		nonDestructiveMode bool
		dryRun             bool
		allowedOperations  []string
		debugMode          bool

		// Transport options
		transport       string
		httpAddr        string
		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string

		// HTTP hardening and observability options
		allowedOrigins string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP vSphere server",
		Long: `Start the MCP vSphere server to provide tools for interacting
with VMware vCenter via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

vCenter credentials are read from the environment: VCENTER_HOST,
VCENTER_USER, and VCENTER_PASSWORD are required. VCENTER_INSECURE,
VCENTER_DATACENTER, VCENTER_CLUSTER, VCENTER_DATASTORE, VCENTER_NETWORK,
and VCENTER_TIMEOUT are optional.

Safety modes:
  - Non-destructive mode (--non-destructive) blocks create, clone, delete,
    and power operations unless they are listed in --allowed-operations.
  - Dry-run mode (--dry-run) validates mutating requests without applying
    them to vCenter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := ServeConfig{
				Transport:          transport,
				HTTPAddr:           httpAddr,
				SSEEndpoint:        sseEndpoint,
				MessageEndpoint:    messageEndpoint,
				HTTPEndpoint:       httpEndpoint,
				NonDestructiveMode: nonDestructiveMode,
				DryRun:             dryRun,
				AllowedOperations:  allowedOperations,
				AllowedOrigins:     allowedOrigins,
				DebugMode:          debugMode,
				Metrics: MetricsServeConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			}
			return runServe(config)
		},
	}

	// Add flags for configuring the server
	cmd.Flags().BoolVar(&nonDestructiveMode, "non-destructive", true, "Enable non-destructive mode: block mutating vSphere operations (default: true)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Enable dry run mode: validate mutating requests without applying them (default: false)")
	cmd.Flags().StringSliceVar(&allowedOperations, "allowed-operations", nil, "Mutating operations permitted in non-destructive mode (e.g. power-on,power-off)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging (default: false)")

	// Transport flags
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// HTTP hardening and observability flags
	cmd.Flags().StringVar(&allowedOrigins, "allowed-origins", "", "Comma-separated list of origins allowed for CORS (for HTTP transports)")
	cmd.Flags().BoolVar(&metricsEnabled, "enable-metrics-server", false, "Serve Prometheus metrics on a dedicated listener (requires INSTRUMENTATION_ENABLED=true)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the dedicated metrics server")

	return cmd
}

// runServe contains the main server logic with support for multiple transports
func runServe(config ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// Load vCenter connection parameters from the environment. Failing here
	// reports all missing variables at once.
	vcConfig, err := vsphere.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load vCenter configuration: %w", err)
	}

	// Logs go to stderr so the stdio transport keeps stdout reserved for
	// protocol frames.
	var logger *slog.Logger
	if config.DebugMode {
		logger = logging.SetupWithLevel(os.Stderr, "debug")
	} else {
		logger = logging.Setup(os.Stderr)
	}
	logger.Debug("vCenter configuration loaded", "config", vcConfig)

	// Setup graceful shutdown - listen for both SIGINT and SIGTERM
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize OpenTelemetry instrumentation provider
	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			if config.Transport != transportStdio {
				logger.Error("error during instrumentation shutdown", "error", shutdownErr)
			}
		}
	}()

	if instrumentationProvider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			"metrics", instrumentationConfig.MetricsExporter,
			"tracing", instrumentationConfig.TracingExporter)
	}

	// Build the vSphere dialer and locator. Every tool call dials a fresh
	// session through the dialer and releases it before returning; the
	// metrics recorder tracks how many are live.
	dialer := vsphere.NewDialer(vcConfig, logger,
		vsphere.WithSessionCounter(instrumentationProvider.Metrics()))
	locator := vsphere.NewLocator(dialer, logger)

	serverConfig := server.NewDefaultConfig()
	serverConfig.Version = rootCmd.Version
	serverConfig.NonDestructiveMode = config.NonDestructiveMode
	serverConfig.DryRun = config.DryRun
	serverConfig.AllowedOperations = config.AllowedOperations

	serverContext, err := server.NewServerContext(shutdownCtx,
		server.WithDialer(dialer),
		server.WithLocator(locator),
		server.WithVSphereConfig(vcConfig),
		server.WithLogger(server.NewSlogLogger(logger)),
		server.WithConfig(serverConfig),
		server.WithInstrumentationProvider(instrumentationProvider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			// Only log shutdown errors for non-stdio transports to avoid output interference
			if config.Transport != transportStdio {
				logger.Error("error during server context shutdown", "error", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("mcp-vsphere", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register the virtual machine tools
	if err := vm.RegisterVMTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register VM tools: %w", err)
	}

	// Start the appropriate server based on transport type
	switch config.Transport {
	case transportStdio:
		// Don't print startup message for stdio mode as it interferes with MCP communication
		return runStdioServer(mcpSrv)
	case transportSSE:
		fmt.Printf("Starting MCP vSphere server with %s transport...\n", config.Transport)
		return runSSEServer(mcpSrv, config.HTTPAddr, config.SSEEndpoint, config.MessageEndpoint, shutdownCtx, config.DebugMode)
	case transportStreamableHTTP:
		fmt.Printf("Starting MCP vSphere server with %s transport...\n", config.Transport)
		return runStreamableHTTPServer(mcpSrv, config, shutdownCtx, instrumentationProvider, serverContext)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			config.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}
}

// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the mcp-vsphere server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, vSphere operations, and sessions
//   - Distributed tracing for request flows and vCenter API calls
//   - Prometheus metrics export via /metrics endpoint
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_vcenter_sessions: Gauge of active vCenter sessions
//
// vSphere Operation Metrics:
//   - mcp_vsphere_operations_total: Counter of vSphere operations by operation and status
//   - mcp_vsphere_operation_duration_seconds: Histogram of vSphere operation durations
//   - mcp_vsphere_mac_lookups_total: Counter of MAC address lookups by result
//
// # Cardinality Considerations
//
// IMPORTANT: With METRICS_DETAILED_LABELS enabled, operation metrics include
// datacenter and classified cluster labels. In environments with many
// datacenters, consider:
//   - Keeping detailed labels disabled (the default)
//   - Using distributed tracing for per-VM debugging
//   - Monitoring cardinality in your metrics backend (Prometheus, etc.)
//
// High cardinality can lead to:
//   - Increased memory usage in metrics backends
//   - Slower query performance
//   - Higher storage costs
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations
//   - vCenter API calls (session dial, inventory enumeration, VM lifecycle)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: mcp-vsphere)
//   - METRICS_DETAILED_LABELS: Include datacenter/cluster labels (default: false)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "mcp-vsphere",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//
//	// Record a vSphere operation
//	recorder.RecordVSphereOperation(ctx, "find_vm_by_mac", "DC1", "prod-cluster", "success", time.Since(start))
package instrumentation

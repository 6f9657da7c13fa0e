package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod     = "method"
	attrPath       = "path"
	attrStatus     = "status"
	attrOperation  = "operation"
	attrDatacenter = "datacenter"
	attrCluster    = "cluster"
	attrResult     = "result"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// vSphere operation metrics
	vsphereOperationsTotal   metric.Int64Counter
	vsphereOperationDuration metric.Float64Histogram
	vsphereLookupsTotal      metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels (datacenter,
	// cluster) are included in vSphere operation metrics
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_vcenter_sessions",
		metric.WithDescription("Number of active vCenter sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_vcenter_sessions gauge: %w", err)
	}

	// vSphere Operation Metrics
	m.vsphereOperationsTotal, err = meter.Int64Counter(
		"mcp_vsphere_operations_total",
		metric.WithDescription("Total number of vSphere operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_vsphere_operations_total counter: %w", err)
	}

	m.vsphereOperationDuration, err = meter.Float64Histogram(
		"mcp_vsphere_operation_duration_seconds",
		metric.WithDescription("vSphere operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_vsphere_operation_duration_seconds histogram: %w", err)
	}

	m.vsphereLookupsTotal, err = meter.Int64Counter(
		"mcp_vsphere_mac_lookups_total",
		metric.WithDescription("Total number of MAC address lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_vsphere_mac_lookups_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordVSphereOperation records a vSphere operation with operation type,
// datacenter, cluster, status, and duration.
//
// CARDINALITY NOTE: When detailedLabels is false (default), only operation and
// status labels are recorded to avoid cardinality explosion in large
// inventories. When detailedLabels is true, datacenter and classified cluster
// type are also included. For inventories with many clusters, keep
// detailedLabels disabled and use traces for per-cluster debugging instead.
func (m *Metrics) RecordVSphereOperation(ctx context.Context, operation, datacenter, cluster, status string, duration time.Duration) {
	if m.vsphereOperationsTotal == nil || m.vsphereOperationDuration == nil {
		return // Instrumentation not initialized
	}

	// Always include operation and status (low cardinality)
	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrDatacenter, datacenter),
			attribute.String(attrCluster, ClassifyClusterName(cluster)),
		)
	}

	m.vsphereOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.vsphereOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordMACLookup records a MAC address lookup outcome.
// Result should be one of: "found", "not_found", "error"
func (m *Metrics) RecordMACLookup(ctx context.Context, result string) {
	if m.vsphereLookupsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.vsphereLookupsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active vCenter sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active vCenter sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, -1)
}

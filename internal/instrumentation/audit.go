package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures the facts of one MCP tool call for audit logging
// and metrics. Build it at the start of a handler, complete it when the
// handler returns, then emit it through an AuditLogger.
type ToolInvocation struct {
	// Tool is the MCP tool name, e.g. "vsphere_find_vm_by_mac".
	Tool string

	// StartTime is when the invocation began.
	StartTime time.Time

	// Duration is set by Complete.
	Duration time.Duration

	// Success is set by Complete.
	Success bool

	// Error holds the error message when the invocation failed.
	Error string

	// VMName is the virtual machine the call operated on, if any.
	VMName string

	// MACAddress is the normalized MAC address queried, if any.
	MACAddress string

	// Datacenter is the resolved datacenter placement, if any.
	Datacenter string

	// ClusterName is the resolved cluster placement, if any.
	ClusterName string

	// TraceID and SpanID link the audit record to the active trace.
	TraceID string
	SpanID  string
}

// NewToolInvocation starts tracking a tool invocation.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithVM records the VM name the invocation operated on.
func (ti *ToolInvocation) WithVM(name string) *ToolInvocation {
	ti.VMName = name
	return ti
}

// WithMAC records the queried MAC address.
func (ti *ToolInvocation) WithMAC(mac string) *ToolInvocation {
	ti.MACAddress = mac
	return ti
}

// WithPlacement records the resolved datacenter and cluster.
func (ti *ToolInvocation) WithPlacement(datacenter, cluster string) *ToolInvocation {
	ti.Datacenter = datacenter
	ti.ClusterName = cluster
	return ti
}

// WithSpanContext captures the trace and span IDs from the active span, if
// any, so the audit record can be correlated with traces.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete records the outcome and duration of the invocation.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess marks the invocation successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError marks the invocation failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Status returns the metric status label for the invocation.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// ClusterType returns the cardinality-controlled classification of the
// cluster placement.
func (ti *ToolInvocation) ClusterType() string {
	return ClassifyClusterName(ti.ClusterName)
}

// LogAttrs returns cardinality-controlled attributes suitable for regular
// operational logging: the cluster is classified rather than named and
// per-call identifiers (VM name, MAC) are omitted.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("cluster_type", ti.ClusterType()),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// LogAuditAttrs returns the full-fidelity attributes for the audit trail:
// actual VM name, MAC address, placement, and trace correlation IDs.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.VMName != "" {
		attrs = append(attrs, slog.String("vm", ti.VMName))
	}
	if ti.MACAddress != "" {
		attrs = append(attrs, slog.String("mac", ti.MACAddress))
	}
	if ti.Datacenter != "" {
		attrs = append(attrs, slog.String("datacenter", ti.Datacenter))
	}
	if ti.ClusterName != "" {
		attrs = append(attrs, slog.String("cluster", ti.ClusterName))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger emits completed tool invocations as structured audit records.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger falls back to the
// slog default.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes the audit record for a completed invocation.
// Failures log at error level so they stand out in aggregated logs.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelError
	}
	al.logger.LogAttrs(ctx, level, "tool invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace ID of the active span, or empty when
// no span is recording.
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}

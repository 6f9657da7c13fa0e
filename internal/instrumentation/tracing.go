package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-vsphere package.
const TracerName = "github.com/giantswarm/mcp-vsphere"

// Span attribute keys for vSphere operations.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrOperation is the operation type (find_vm_by_mac, list_vms, etc.).
	SpanAttrOperation = "vsphere.operation"

	// SpanAttrVM is the virtual machine name.
	SpanAttrVM = "vsphere.vm"

	// SpanAttrMAC is the queried MAC address.
	SpanAttrMAC = "vsphere.mac"

	// SpanAttrDatacenter is the vSphere datacenter name.
	SpanAttrDatacenter = "vsphere.datacenter"

	// SpanAttrCluster is the vSphere cluster name.
	SpanAttrCluster = "vsphere.cluster"

	// SpanAttrClusterType is the classified cluster type attribute.
	SpanAttrClusterType = "vsphere.cluster_type"

	// SpanAttrVMCount is the number of VMs an enumeration scanned.
	SpanAttrVMCount = "vsphere.vm_count"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming and cardinality controls.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithOperation adds the operation type attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithVM adds the virtual machine name attribute.
func (b *SpanAttributeBuilder) WithVM(name string) *SpanAttributeBuilder {
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrVM, name))
	}
	return b
}

// WithMAC adds the MAC address attribute.
func (b *SpanAttributeBuilder) WithMAC(mac string) *SpanAttributeBuilder {
	if mac != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrMAC, mac))
	}
	return b
}

// WithDatacenter adds the datacenter attribute.
func (b *SpanAttributeBuilder) WithDatacenter(name string) *SpanAttributeBuilder {
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrDatacenter, name))
	}
	return b
}

// WithCluster adds cluster attributes with cardinality control.
// Adds both the full cluster name and classified type.
func (b *SpanAttributeBuilder) WithCluster(clusterName string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrCluster, clusterName),
		attribute.String(SpanAttrClusterType, ClassifyClusterName(clusterName)),
	)
	return b
}

// WithClusterType adds only the classified cluster type (for lower cardinality).
func (b *SpanAttributeBuilder) WithClusterType(clusterName string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrClusterType, ClassifyClusterName(clusterName)),
	)
	return b
}

// WithVMCount adds the scanned VM count attribute.
func (b *SpanAttributeBuilder) WithVMCount(count int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Int(SpanAttrVMCount, count))
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
// Automatically adds tool name and sets appropriate span kind.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartVSphereSpan starts a span for vCenter API operations.
// Includes the operation attribute and sets client span kind.
func StartVSphereSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "vsphere."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}

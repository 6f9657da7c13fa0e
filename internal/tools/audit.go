// Package tools provides shared utilities and types for MCP tool implementations.
package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-vsphere/internal/instrumentation"
	"github.com/giantswarm/mcp-vsphere/internal/server"
)

// ToolHandler is the signature for MCP tool handler functions that take ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithInstrumentation wraps a tool handler with tracing, metrics, and
// audit logging. The wrapper automatically captures:
//   - A server-kind span covering the tool invocation
//   - Tool invocation timing and success/error status
//   - VM and MAC address information from request arguments
//   - OpenTelemetry trace context for correlation
//
// If no instrumentation provider is available, the handler is called without
// any of this.
func WrapWithInstrumentation(
	toolName string,
	operation string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider := sc.InstrumentationProvider()
		if provider == nil {
			return handler(ctx, request, sc)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		extractAuditInfoFromArgs(invocation, request.GetArguments())

		start := time.Now()
		result, err := handler(ctx, request, sc)
		duration := time.Since(start)

		// Determine success/error status
		if err != nil {
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		} else if result != nil && result.IsError {
			// MCP tool errors are returned in the result, not as Go errors
			invocation.Complete(false, nil)
			// Try to extract the error message from result content
			if len(result.Content) > 0 {
				if textContent, ok := result.Content[0].(mcp.TextContent); ok {
					invocation.Error = textContent.Text
				}
			}
		} else {
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		provider.Metrics().RecordVSphereOperation(
			ctx,
			operation,
			invocation.Datacenter,
			invocation.ClusterName,
			invocation.Status(),
			duration,
		)

		// Log the tool invocation (metrics-safe, uses cardinality-controlled values)
		provider.AuditLogger().LogToolInvocation(ctx, invocation)

		return result, err
	}
}

// extractAuditInfoFromArgs extracts VM and MAC address information from tool
// request arguments for audit logging.
func extractAuditInfoFromArgs(invocation *instrumentation.ToolInvocation, args map[string]interface{}) {
	if mac, ok := args["mac_address"].(string); ok && mac != "" {
		invocation.WithMAC(mac)
	}
	if name := extractVMName(args); name != "" {
		invocation.WithVM(name)
	}
}

// extractVMName extracts the VM name from various argument patterns.
// Different tools use different parameter names for the VM name.
func extractVMName(args map[string]interface{}) string {
	nameKeys := []string{"name", "vm_name", "source"}
	for _, key := range nameKeys {
		if name, ok := args[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

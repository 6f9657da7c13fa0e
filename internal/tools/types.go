package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-vsphere/internal/vsphere"
)

// EmptyRequest represents a request with no parameters.
// Used by tools that don't require any input arguments.
type EmptyRequest struct{}

// ErrorResult converts a vSphere error into an MCP tool error result with a
// message tailored to the error class. Tool handlers should return
// (ErrorResult(err), nil) so MCP clients receive a structured tool error
// instead of a protocol failure.
func ErrorResult(err error) *mcp.CallToolResult {
	if err == nil {
		return nil
	}

	switch {
	case vsphere.IsInvalidInput(err):
		return mcp.NewToolResultError(fmt.Sprintf("Invalid input: %v", err))
	case vsphere.IsNotFound(err):
		return mcp.NewToolResultError(err.Error())
	case vsphere.IsConnectionError(err):
		return mcp.NewToolResultError(fmt.Sprintf("vCenter connection failed: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

// Package cmd provides the command-line interface for mcp-vsphere.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// The CLI maintains backwards compatibility by running the serve command when
// no subcommand is specified, preserving the original behavior of the application.
//
// Command Structure:
//
//	mcp-vsphere [flags]                 # Starts the MCP server (default)
//	mcp-vsphere serve [flags]           # Explicitly starts the MCP server
//	mcp-vsphere version                 # Shows version information
//	mcp-vsphere self-update             # Updates to latest release
//	mcp-vsphere help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-vsphere serve --transport stdio           # Default STDIO transport
//	mcp-vsphere serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-vsphere serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// vCenter connection parameters come from the environment (VCENTER_HOST,
// VCENTER_USER, VCENTER_PASSWORD, and optional placement defaults). The serve
// command additionally supports safety flags for controlling mutating vSphere
// operations, including non-destructive mode, dry-run mode, and an allowed
// operations whitelist.
package cmd

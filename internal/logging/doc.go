// Package logging provides structured logging utilities for the mcp-vsphere application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog, configured from the environment (MCP_LOG_LEVEL,
//     MCP_LOG_FORMAT)
//   - Output pinned to stderr so the stdio transport keeps stdout for protocol frames
//   - Host/URL sanitization (IP redaction) for security
//   - Credential masking
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "vsphere_find_vm_by_mac")
//	logger.Info("lookup complete",
//	    logging.MAC("00:50:56:aa:bb:cc"),
//	    logging.VM("web-01"))
//
// Sanitize sensitive data before logging:
//
//	logger.Error("connection failed",
//	    logging.Host(vcenterURL),
//	    logging.SanitizedErr(err))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - vCenter endpoint URLs have IP addresses redacted to prevent topology leakage
//   - Credentials and session tickets are never logged directly
package logging

package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation  = "operation"
	KeyTool       = "tool"
	KeyVM         = "vm"
	KeyMAC        = "mac"
	KeyDatacenter = "datacenter"
	KeyCluster    = "cluster"
	KeyDatastore  = "datastore"
	KeyDuration   = "duration"
	KeyStatus     = "status"
	KeyError      = "error"
	KeyHost       = "host"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches IPv6 addresses for sanitization.
// This regex matches common IPv6 formats including:
// - Full form: 2001:0db8:85a3:0000:0000:8a2e:0370:7334
// - Compressed form: 2001:db8:85a3::8a2e:370:7334
// - Bracketed form (used in URLs): [2001:db8::1]
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// VM returns a slog attribute for a virtual machine name.
func VM(name string) slog.Attr {
	return slog.String(KeyVM, name)
}

// MAC returns a slog attribute for a MAC address.
func MAC(mac string) slog.Attr {
	return slog.String(KeyMAC, mac)
}

// Datacenter returns a slog attribute for the datacenter name.
func Datacenter(name string) slog.Attr {
	return slog.String(KeyDatacenter, name)
}

// Cluster returns a slog attribute for the cluster name.
func Cluster(name string) slog.Attr {
	return slog.String(KeyCluster, name)
}

// Datastore returns a slog attribute for the datastore name.
func Datastore(name string) slog.Attr {
	return slog.String(KeyDatastore, name)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses redacted.
// This should be used when logging errors that may contain hostnames or IP addresses
// from vCenter SOAP responses, which could leak network topology information.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	sanitized := SanitizeHost(err.Error())
	return slog.String(KeyError, sanitized)
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost returns a sanitized version of the host for logging purposes.
// This function redacts IP addresses (both IPv4 and IPv6) to prevent sensitive
// network topology information from appearing in logs, while preserving enough
// context for debugging.
//
// Examples:
//   - "https://192.168.1.100:443" -> "https://<redacted-ip>:443"
//   - "https://vcenter.example.com:443" -> "https://vcenter.example.com:443"
//   - "192.168.1.100" -> "<redacted-ip>"
//   - "https://[2001:db8::1]:443" -> "https://<redacted-ip>:443"
//   - "2001:db8::1" -> "<redacted-ip>"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	// Helper to redact both IPv4 and IPv6
	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		result = ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
		return result
	}

	// Check if host has a scheme (is a URL) - if not, it's just a host/IP
	if !strings.Contains(host, "://") {
		// No scheme - just redact any IP addresses directly
		return redactIPs(host)
	}

	// Parse as URL to properly handle host extraction
	parsed, err := url.Parse(host)
	if err != nil {
		// If not a valid URL, just redact any IP addresses
		return redactIPs(host)
	}

	// For valid URLs, redact IP addresses in the host portion
	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		// Replace IP portion, keeping the port if present
		sanitizedHost := redactIPs(parsed.Host)
		parsed.Host = sanitizedHost
		return parsed.String()
	}

	return host
}

// SanitizeCredential returns a masked version of a password or session ticket
// for logging. It returns a length indicator without exposing any content,
// as even partial prefixes can aid attacks.
func SanitizeCredential(credential string) string {
	if credential == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[credential:%d chars]", len(credential))
}

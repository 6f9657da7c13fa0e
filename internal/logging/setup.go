package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables controlling log output.
const (
	// EnvLogLevel selects the minimum level: debug, info, warn, or error.
	EnvLogLevel = "MCP_LOG_LEVEL"

	// EnvLogFormat selects the output format: text (default) or json.
	EnvLogFormat = "MCP_LOG_FORMAT"
)

// Setup builds the process logger from the environment and installs it as
// the slog default. Output always goes to w; callers pass os.Stderr so the
// stdio transport keeps stdout reserved for protocol frames.
func Setup(w io.Writer) *slog.Logger {
	return SetupWithLevel(w, os.Getenv(EnvLogLevel))
}

// SetupWithLevel is Setup with an explicit minimum level, overriding
// MCP_LOG_LEVEL. The format still comes from the environment.
func SetupWithLevel(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnvLogFormat)), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level. Unknown or empty values
// default to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

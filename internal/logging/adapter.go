package logging

import (
	"log/slog"
	"os"
)

// Logger is the minimal leveled logging interface the server components
// depend on. It decouples them from a concrete handler so tests can swap in
// buffers.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter implements Logger on top of a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps the given logger. A nil logger falls back to the
// slog default.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter over a text handler writing to stderr,
// keeping stdout free for the stdio transport.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// Logger returns the underlying slog logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

func (a *SlogAdapter) Debug(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

func (a *SlogAdapter) Info(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

func (a *SlogAdapter) Warn(msg string, args ...any) {
	a.logger.Warn(msg, args...)
}

func (a *SlogAdapter) Error(msg string, args ...any) {
	a.logger.Error(msg, args...)
}

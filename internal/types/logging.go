package types

import "log/slog"

// SlogLogger adapts *slog.Logger to the Logger interface. Entry points build
// one slog handler and hand this adapter to the pipeline components.
type SlogLogger struct {
	inner *slog.Logger
}

// NewSlogLogger wraps the given slog logger.
func NewSlogLogger(inner *slog.Logger) *SlogLogger {
	return &SlogLogger{inner: inner}
}

func (l *SlogLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }

// With returns a logger carrying the additional key-value pairs.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{inner: l.inner.With(args...)}
}

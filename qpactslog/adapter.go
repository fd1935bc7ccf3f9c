// Package qpactslog adapts log/slog to qpact.Logger.
package qpactslog

import "log/slog"

// Logger wraps an *slog.Logger as a qpact.Logger.
type Logger struct {
	l *slog.Logger
}

// New wraps l. A nil l uses slog.Default().
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l}
}

func (s *Logger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s *Logger) Warn(msg string, kv ...any)  { s.l.Warn(msg, kv...) }
func (s *Logger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }
func (s *Logger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }

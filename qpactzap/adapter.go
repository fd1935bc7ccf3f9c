// Package qpactzap adapts go.uber.org/zap to qpact.Logger, grounded on
// GoCodeAlone-modular's zap-based Logger implementation (logger.go).
package qpactzap

import "go.uber.org/zap"

// Logger wraps a *zap.SugaredLogger as a qpact.Logger.
type Logger struct {
	l *zap.SugaredLogger
}

// New wraps l.Sugar(). A nil l builds a production zap.Logger.
func New(l *zap.Logger) *Logger {
	if l == nil {
		var err error
		l, err = zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
	}
	return &Logger{l: l.Sugar()}
}

func (z *Logger) Info(msg string, kv ...any)  { z.l.Infow(msg, kv...) }
func (z *Logger) Warn(msg string, kv ...any)  { z.l.Warnw(msg, kv...) }
func (z *Logger) Error(msg string, kv ...any) { z.l.Errorw(msg, kv...) }
func (z *Logger) Debug(msg string, kv ...any) { z.l.Debugw(msg, kv...) }

// Package logging provides the printf-style Logger every subsystem takes
// as an explicit dependency — mirroring the teacher's package-level
// log.Infof/log.Warnf calls, but injected rather than global (spec.md §9:
// "forbid singletons in the core").
package logging

import "go.uber.org/zap"

// Logger is the subset of *zap.SugaredLogger used across the core.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	With(args ...interface{}) Logger
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a production zap logger scoped to subsystem.
func New(subsystem string) Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return &zapLogger{s: base.Sugar().With("subsystem", subsystem)}
}

// Nop returns a Logger that discards everything, useful for tests.
func Nop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }

func (l *zapLogger) With(args ...interface{}) Logger {
	return &zapLogger{s: l.s.With(args...)}
}

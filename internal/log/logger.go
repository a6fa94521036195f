// Package log wraps log/slog with the component convention used across the
// service: every record carries a "component" attribute so backend, store
// and HTTP lines can be filtered apart.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Logger is a slog.Logger bound to a component name.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a text logger on stdout at the given level.
func New(level slog.Level, component string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// WithComponent returns a logger for a different component sharing the
// same handler.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger with extra attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// Component returns the bound component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs this logger as the process-wide slog default, so
// packages that log through slog directly pick up the same handler.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

type contextKey struct{}

// IntoContext attaches the logger to a context.
func IntoContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger from the context, or a default-backed one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

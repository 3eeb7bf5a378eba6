// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import "log/slog"

// ComponentLogger provides component-scoped structured logging.
//
// The global slog.Logger is resolved on every call, so loggers created at
// package init follow later SetupLogger changes.
type ComponentLogger struct {
	component string
	fields    []any
}

// NewLogger creates a logger scoped to a named component.
func NewLogger(component string) *ComponentLogger {
	return &ComponentLogger{component: component}
}

// WithOperation returns a new logger with the operation context added.
func (l *ComponentLogger) WithOperation(name string) *ComponentLogger {
	return l.WithFields("operation", name)
}

// WithFields returns a new logger with additional alternating key-value pairs.
func (l *ComponentLogger) WithFields(fields ...any) *ComponentLogger {
	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &ComponentLogger{component: l.component, fields: merged}
}

func (l *ComponentLogger) slogger() *slog.Logger {
	return Logger().With("component", l.component).With(l.fields...)
}

// Debug logs a message at debug level.
func (l *ComponentLogger) Debug(msg string, args ...any) {
	l.slogger().Debug(msg, args...)
}

// Info logs a message at info level.
func (l *ComponentLogger) Info(msg string, args ...any) {
	l.slogger().Info(msg, args...)
}

// Warn logs a message at warn level.
func (l *ComponentLogger) Warn(msg string, args ...any) {
	l.slogger().Warn(msg, args...)
}

// Error logs a message at error level.
func (l *ComponentLogger) Error(msg string, args ...any) {
	l.slogger().Error(msg, args...)
}

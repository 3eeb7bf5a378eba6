// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// EnvDebug enables debug logging when set to "true".
const EnvDebug = "URLKIT_DEBUG"

var (
	mu           sync.RWMutex
	globalLogger *slog.Logger
	level        = new(slog.LevelVar)
	structured   bool
	outputWriter io.Writer = os.Stderr
)

func init() {
	SetupLogger(false, false)
}

// SetupLogger configures the global logger writing to stderr.
// When structuredOutput is true the output is JSON, otherwise slog's text format.
// This function is safe for concurrent use.
func SetupLogger(debug, structuredOutput bool) {
	SetupLoggerWithWriter(os.Stderr, debug, structuredOutput)
}

// SetupLoggerWithWriter configures the global logger with a custom writer.
// This is useful for testing or redirecting logs.
func SetupLoggerWithWriter(w io.Writer, debug, structuredOutput bool) {
	mu.Lock()
	defer mu.Unlock()

	outputWriter = w
	structured = structuredOutput
	if debug || os.Getenv(EnvDebug) == "true" {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	rebuild()
}

// rebuild recreates the handler from the current settings.
// Caller must hold mu.Lock().
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(outputWriter, opts)
	} else {
		handler = slog.NewTextHandler(outputWriter, opts)
	}

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// SetLevel changes the minimum level without touching the output settings.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel parses "debug", "info", "warn"/"warning" or "error".
// Unrecognized values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// IsDebugEnabled reports whether debug lines are currently emitted.
func IsDebugEnabled() bool {
	return level.Level() <= slog.LevelDebug
}

// Logger returns the underlying slog.Logger.
// This function is safe for concurrent use.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
//
// Example:
//
//	logutil.Error("redirect failed", "error", err, "location", loc)
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

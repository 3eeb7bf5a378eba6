// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the structured logging layer used across urlkit.
//
// It wraps the standard library's slog package with a process-wide logger and
// component-scoped loggers for the library packages.
//
// # Basic Usage
//
//	// Initialize logging (typically in main.go)
//	logutil.SetupLogger(debug, structured)
//
//	logutil.Debug("parsed url", "host", host)
//	logutil.Error("redirect failed", "error", err)
//
// # Component Loggers
//
// Library packages log through a ComponentLogger so every line carries the
// emitting component:
//
//	var log = logutil.NewLogger("urlutil")
//	log.WithOperation("parse").Debug("malformed url", "error", err)
//
// # Debug Mode
//
// Debug logging is enabled by passing debug=true to SetupLogger or by setting
// URLKIT_DEBUG=true in the environment.
package logutil

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	t.Setenv(EnvDebug, "")

	SetupLogger(true, false)
	if !IsDebugEnabled() {
		t.Error("expected debug to be enabled")
	}

	SetupLogger(false, false)
	if IsDebugEnabled() {
		t.Error("expected debug to be disabled")
	}
}

func TestIsDebugEnabledEnvVar(t *testing.T) {
	t.Setenv(EnvDebug, "true")
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	if !IsDebugEnabled() {
		t.Errorf("expected %s=true to enable debug", EnvDebug)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	t.Setenv(EnvDebug, "")
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	Debug("hidden")
	Info("shown", "key", "value")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug line leaked at info level: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in output, got: %s", output)
	}
}

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, true)
	defer SetupLogger(false, false)

	Warn("careful", "n", 1)
	if !strings.Contains(buf.String(), `"msg":"careful"`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	SetLevel(slog.LevelError)
	Warn("dropped")
	Error("kept")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("warn line should be dropped at error level: %s", output)
	}
	if !strings.Contains(output, "kept") {
		t.Errorf("expected error line, got: %s", output)
	}
}

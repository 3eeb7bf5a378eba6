// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerCreatesWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	NewLogger("urlutil").Info("hello")
	if !strings.Contains(buf.String(), "component=urlutil") {
		t.Errorf("expected output to contain component=urlutil, got: %s", buf.String())
	}
}

func TestWithOperationAddsContext(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	NewLogger("redirect").WithOperation("to").Warn("test")

	output := buf.String()
	if !strings.Contains(output, "component=redirect") {
		t.Errorf("expected component=redirect in output, got: %s", output)
	}
	if !strings.Contains(output, "operation=to") {
		t.Errorf("expected operation=to in output, got: %s", output)
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	parent := NewLogger("comp")
	_ = parent.WithFields("scheme", "https")
	parent.Info("plain")

	if strings.Contains(buf.String(), "scheme=https") {
		t.Errorf("parent logger picked up child fields: %s", buf.String())
	}
}

func TestLoggerFollowsSetup(t *testing.T) {
	logger := NewLogger("late")

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	logger.Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("logger created before setup should write to the new writer, got: %s", buf.String())
	}
}

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package browser opens built URLs in the user's web browser.
//
// Launching is delegated to github.com/pkg/browser, which supports Windows
// (cmd /c start), macOS (open) and Linux (xdg-open). Only http and https URLs
// that pass urlutil.Validate are handed to the system, so file: and
// javascript: URLs never reach a shell command.
//
//	err := browser.Launch(browser.LaunchOptions{URL: u.String()})
package browser

import (
	"fmt"
	"io"
	"strings"

	pkgbrowser "github.com/pkg/browser"

	"github.com/jongio/urlkit/urlutil"
)

// Target represents the browser target for launching URLs.
type Target string

const (
	// TargetDefault uses the system default browser.
	TargetDefault Target = "default"
	// TargetNone disables browser launching; Launch only validates.
	TargetNone Target = "none"
)

// ValidTargets returns all valid browser target values.
func ValidTargets() []Target {
	return []Target{TargetDefault, TargetNone}
}

// IsValid checks if a target string is valid.
func IsValid(target string) bool {
	for _, valid := range ValidTargets() {
		if Target(target) == valid {
			return true
		}
	}
	return false
}

// FormatValidTargets returns a comma-separated list of valid targets.
func FormatValidTargets() string {
	targets := ValidTargets()
	strs := make([]string, len(targets))
	for i, t := range targets {
		strs[i] = string(t)
	}
	return strings.Join(strs, ", ")
}

// LaunchOptions contains options for launching a browser.
type LaunchOptions struct {
	// URL to open
	URL string
	// Target browser to use; empty means TargetDefault
	Target Target
	// Output receives the launcher's stdout and stderr; nil discards it.
	Output io.Writer
}

// openURL is replaced in tests.
var openURL = pkgbrowser.OpenURL

// Launch validates opts.URL and opens it unless the target is TargetNone.
func Launch(opts LaunchOptions) error {
	if err := urlutil.Validate(opts.URL); err != nil {
		return fmt.Errorf("refusing to open url: %w", err)
	}

	target := opts.Target
	if target == "" {
		target = TargetDefault
	}
	if !IsValid(string(target)) {
		return fmt.Errorf("unsupported browser target: %s (valid options: %s)", target, FormatValidTargets())
	}
	if target == TargetNone {
		return nil
	}

	output := opts.Output
	if output == nil {
		output = io.Discard
	}
	pkgbrowser.Stdout = output
	pkgbrowser.Stderr = output

	if err := openURL(strings.TrimSpace(opts.URL)); err != nil {
		return fmt.Errorf("could not open browser: %w", err)
	}
	return nil
}

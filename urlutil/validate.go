package urlutil

import (
	"fmt"
	"strings"
)

// MaxURLLength is the practical limit for URL length (RFC 2616).
const MaxURLLength = 2048

// Validate checks that raw is a usable absolute web URL:
//   - not empty or only whitespace
//   - at most MaxURLLength characters
//   - parseable by Parse
//   - http or https scheme
//   - a host is present
//
// Surrounding whitespace is ignored.
//
// Example:
//
//	if err := urlutil.Validate(target); err != nil {
//		return fmt.Errorf("invalid redirect target: %w", err)
//	}
func Validate(raw string) error {
	_, err := parseWebURL(raw)
	return err
}

// ValidateHTTPSOnly is Validate restricted to https, with plain http still
// allowed for localhost during development.
func ValidateHTTPSOnly(raw string) error {
	u, err := parseWebURL(raw)
	if err != nil {
		return err
	}
	if u.scheme == "https" || isLocalhost(u.host) {
		return nil
	}
	return fmt.Errorf("url must use https:// (http:// only allowed for localhost)")
}

func parseWebURL(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmpty
	}
	if len(raw) > MaxURLLength {
		return nil, fmt.Errorf("url exceeds maximum length of %d characters", MaxURLLength)
	}

	u, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}

	if u.scheme != "http" && u.scheme != "https" {
		if u.scheme == "" {
			return nil, fmt.Errorf("url must use http:// or https://")
		}
		return nil, fmt.Errorf("url must use http:// or https://, got: %s", u.scheme)
	}
	if u.host == "" {
		return nil, fmt.Errorf("url missing host/domain")
	}
	return u, nil
}

// NormalizeScheme prefixes raw with defaultScheme:// unless it already
// starts with an http or https scheme.
//
//	urlutil.NormalizeScheme("example.com", "https") // "https://example.com"
func NormalizeScheme(raw, defaultScheme string) string {
	raw = strings.TrimSpace(raw)
	if u, err := Parse(raw); err == nil && (u.scheme == "http" || u.scheme == "https") {
		return raw
	}
	return defaultScheme + "://" + raw
}

func isLocalhost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1", "[::1]":
		return true
	}
	return false
}

// Package config loads the YAML files used by the urlkit command line:
// component files for "urlkit build -f" and rule files for "urlkit serve".
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jongio/urlkit/urlutil"
)

var (
	// ErrInvalidPath indicates a config path that is empty or escapes its directory.
	ErrInvalidPath = errors.New("invalid config path")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Components describes a URL field by field.
//
//	scheme: https
//	host: example.com
//	port: 8443
//	path: /docs
//	query:
//	  b: "2"
//	  a: "1"
//	fragment: intro
type Components struct {
	Scheme   string         `yaml:"scheme" json:"scheme,omitempty"`
	Host     string         `yaml:"host" json:"host,omitempty"`
	Port     int            `yaml:"port" json:"port,omitempty"`
	User     string         `yaml:"user" json:"user,omitempty"`
	Password string         `yaml:"password" json:"password,omitempty"`
	Path     string         `yaml:"path" json:"path,omitempty"`
	Query    *urlutil.Query `yaml:"query" json:"query,omitempty"`
	Fragment string         `yaml:"fragment" json:"fragment,omitempty"`
}

// Validate checks the port range.
func (c *Components) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	return nil
}

// URL converts the components into a URL value.
func (c *Components) URL() *urlutil.URL {
	u := &urlutil.URL{}
	u.SetScheme(c.Scheme)
	u.SetHost(c.Host)
	u.SetPort(c.Port)
	u.SetUser(c.User)
	u.SetPassword(c.Password)
	u.SetPath(c.Path)
	if c.Query != nil {
		u.SetQuery(c.Query.Clone())
	}
	u.SetFragment(c.Fragment)
	return u
}

// ComponentsOf captures the components of u, the inverse of URL.
func ComponentsOf(u *urlutil.URL) *Components {
	c := &Components{
		Scheme:   u.Scheme(),
		Host:     u.Host(),
		Port:     u.Port(),
		User:     u.User(),
		Password: u.Password(),
		Path:     u.Path(),
		Fragment: u.Fragment(),
	}
	if u.Query().Len() > 0 {
		c.Query = u.Query().Clone()
	}
	return c
}

// Rule maps an incoming request path to a redirect target.
type Rule struct {
	// Path is matched exactly against the request path. Route patterns
	// ({param} and *) are rejected.
	Path string `yaml:"path"`
	// Target is an absolute URL or a path on the same host.
	Target string `yaml:"target"`
	// Status defaults to 302.
	Status int `yaml:"status"`
	// PreserveQuery merges the request query into the target query.
	PreserveQuery bool `yaml:"preserveQuery"`
}

// Serve configures the redirect server.
type Serve struct {
	Addr string `yaml:"addr"`
	// RateLimit is the sustained number of requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	// Burst is the largest burst allowed when RateLimit is set.
	Burst int    `yaml:"burst"`
	Rules []Rule `yaml:"rules"`
}

// DefaultAddr is used when Serve.Addr is empty.
const DefaultAddr = ":8080"

// Validate checks every rule and applies defaults.
func (s *Serve) Validate() error {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("%w: rateLimit must not be negative", ErrInvalidConfig)
	}
	if s.RateLimit > 0 && s.Burst <= 0 {
		s.Burst = 1
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(s.Rules))
	for i := range s.Rules {
		r := &s.Rules[i]
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: rule %d: path %q must start with /", ErrInvalidConfig, i, r.Path)
		}
		if strings.ContainsAny(r.Path, "{}*") {
			return fmt.Errorf("%w: rule %d: path %q must not contain a route pattern", ErrInvalidConfig, i, r.Path)
		}
		if seen[r.Path] {
			return fmt.Errorf("%w: rule %d: duplicate path %q", ErrInvalidConfig, i, r.Path)
		}
		seen[r.Path] = true

		target, err := urlutil.Parse(r.Target)
		if err != nil {
			return fmt.Errorf("%w: rule %d: target: %v", ErrInvalidConfig, i, err)
		}
		if target.IsZero() {
			return fmt.Errorf("%w: rule %d: empty target", ErrInvalidConfig, i)
		}

		if r.Status == 0 {
			r.Status = http.StatusFound
		}
		if r.Status < 300 || r.Status > 399 {
			return fmt.Errorf("%w: rule %d: status %d is not a redirect", ErrInvalidConfig, i, r.Status)
		}
	}
	return nil
}

// LoadComponents reads and validates a components file.
func LoadComponents(path string) (*Components, error) {
	var c Components
	if err := load(path, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadServe reads and validates a redirect server file.
func LoadServe(path string) (*Serve, error) {
	var s Serve
	if err := load(path, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func load(path string, target any) error {
	if err := validatePath(path); err != nil {
		return err
	}

	// #nosec G304 -- path validated by validatePath
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// validatePath rejects empty paths and parent directory references.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path contains parent directory reference", ErrInvalidPath)
		}
	}
	return nil
}

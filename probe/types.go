// Package probe follows the redirect chain of a URL, one request per hop,
// with per-host circuit breaking and rate limiting.
package probe

import (
	"time"
)

const (
	// DefaultMaxHops matches the redirect limit of net/http clients.
	DefaultMaxHops = 10

	// DefaultTimeout bounds each hop.
	DefaultTimeout = 5 * time.Second

	// maxResponseBodySize limits how much of a hop body is drained.
	maxResponseBodySize = 64 * 1024
)

// HTTP transport timeout constants.
const (
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPDialTimeout           = 5 * time.Second
	HTTPKeepAliveTimeout      = 30 * time.Second
	HTTPTLSHandshakeTimeout   = 5 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Config configures a Prober.
type Config struct {
	// Timeout applies to each hop. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxHops is the largest number of redirects followed. Zero means DefaultMaxHops.
	MaxHops int
	// Method is GET or HEAD. Empty means HEAD.
	Method string
	// RateLimit is the number of requests per second allowed per host; 0 disables it.
	RateLimit int
	// EnableCircuitBreaker stops contacting a host after repeated failures.
	EnableCircuitBreaker bool
	// CircuitBreakerFailures is the request count after which the failure
	// ratio is evaluated. Negative never trips.
	CircuitBreakerFailures int
	// CircuitBreakerTimeout is how long an open breaker rejects requests.
	CircuitBreakerTimeout time.Duration
	// EnableMetrics records Prometheus metrics for every hop.
	EnableMetrics bool
}

// Hop is one request in a redirect chain.
type Hop struct {
	URL          string        `json:"url"`
	StatusCode   int           `json:"statusCode,omitempty"`
	Location     string        `json:"location,omitempty"`
	ResponseTime time.Duration `json:"responseTime"`
	Error        string        `json:"error,omitempty"`
}

// Redirected reports whether the hop answered with a redirect that carries
// a Location.
func (h Hop) Redirected() bool {
	return h.Error == "" && h.StatusCode >= 300 && h.StatusCode < 400 && h.Location != ""
}

// Result is the outcome of following a URL.
type Result struct {
	Start string `json:"start"`
	// Final is the last URL reached, empty when the first hop failed.
	Final string `json:"final,omitempty"`
	Hops  []Hop  `json:"hops"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the chain ended in a 2xx response.
func (r Result) OK() bool {
	if r.Error != "" || len(r.Hops) == 0 {
		return false
	}
	last := r.Hops[len(r.Hops)-1]
	return last.Error == "" && last.StatusCode >= 200 && last.StatusCode < 300
}

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jongio/urlkit/logutil"
	"github.com/jongio/urlkit/urlutil"
)

var logger = logutil.NewLogger("probe")

// sharedHTTPTransport is shared by every Prober.
var sharedHTTPTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     HTTPIdleConnTimeout,
	DialContext: (&net.Dialer{
		Timeout:   HTTPDialTimeout,
		KeepAlive: HTTPKeepAliveTimeout,
	}).DialContext,
	TLSHandshakeTimeout:   HTTPTLSHandshakeTimeout,
	ExpectContinueTimeout: HTTPExpectContinueTimeout,
}

// Prober follows redirect chains. It is safe for concurrent use.
type Prober struct {
	method          string
	maxHops         int
	httpClient      *http.Client
	breakers        map[string]*gobreaker.CircuitBreaker
	rateLimiters    map[string]*rate.Limiter
	mu              sync.RWMutex
	enableBreaker   bool
	breakerFailures int
	breakerTimeout  time.Duration
	rateLimit       int
	metrics         bool
}

// New creates a Prober from cfg, applying defaults for zero fields.
func New(cfg Config) *Prober {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodHead
	}

	return &Prober{
		method:          method,
		maxHops:         maxHops,
		breakers:        make(map[string]*gobreaker.CircuitBreaker),
		rateLimiters:    make(map[string]*rate.Limiter),
		enableBreaker:   cfg.EnableCircuitBreaker,
		breakerFailures: cfg.CircuitBreakerFailures,
		breakerTimeout:  cfg.CircuitBreakerTimeout,
		rateLimit:       cfg.RateLimit,
		metrics:         cfg.EnableMetrics,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: sharedHTTPTransport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Follow requests raw and every Location it is redirected to, up to the
// configured number of hops. Failures are reported in the Result.
func (p *Prober) Follow(ctx context.Context, raw string) Result {
	res := Result{Start: raw, Hops: []Hop{}}
	if err := urlutil.Validate(raw); err != nil {
		res.Error = err.Error()
		return res
	}
	current, err := urlutil.Parse(strings.TrimSpace(raw))
	if err != nil {
		res.Error = err.Error()
		return res
	}

	seen := make(map[string]bool)
	for {
		target := current.String()
		if seen[target] {
			res.Error = fmt.Sprintf("redirect loop at %s", target)
			return res
		}
		seen[target] = true

		hop := p.check(ctx, current)
		res.Hops = append(res.Hops, hop)
		res.Final = target

		if !hop.Redirected() {
			res.Error = hop.Error
			return res
		}
		if len(res.Hops) > p.maxHops {
			res.Error = fmt.Sprintf("stopped after %d redirects", p.maxHops)
			return res
		}

		next, err := resolveLocation(current, hop.Location)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		current = next
	}
}

// resolveLocation resolves a Location header against the URL that sent it.
func resolveLocation(base *urlutil.URL, location string) (*urlutil.URL, error) {
	ref, err := neturl.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %v", urlutil.ErrMalformed, location, err)
	}
	baseURL, err := neturl.Parse(base.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", urlutil.ErrMalformed, err)
	}

	next, err := urlutil.Parse(baseURL.ResolveReference(ref).String())
	if err != nil {
		return nil, err
	}
	if !next.HasScheme("http") && !next.HasScheme("https") {
		return nil, fmt.Errorf("redirect to unsupported scheme %q", next.Scheme())
	}
	return next, nil
}

// hostKey identifies the breaker and limiter of u.
func hostKey(u *urlutil.URL) string {
	if u.Port() == 0 {
		return u.Host()
	}
	return net.JoinHostPort(u.Host(), strconv.Itoa(u.Port()))
}

// getOrCreateCircuitBreaker gets or creates a circuit breaker for a host.
func (p *Prober) getOrCreateCircuitBreaker(host string) *gobreaker.CircuitBreaker {
	if !p.enableBreaker {
		return nil
	}

	p.mu.RLock()
	breaker, exists := p.breakers[host]
	p.mu.RUnlock()
	if exists {
		return breaker
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if breaker, exists := p.breakers[host]; exists {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    p.breakerTimeout,
		Timeout:     p.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if p.breakerFailures < 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(p.breakerFailures) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithOperation("breaker").Debug("state change", "host", name, "from", from.String(), "to", to.String())
			if p.metrics {
				recordCircuitBreakerState(name, to)
			}
		},
	}

	breaker = gobreaker.NewCircuitBreaker(settings)
	p.breakers[host] = breaker
	return breaker
}

// getOrCreateRateLimiter gets or creates a rate limiter for a host.
func (p *Prober) getOrCreateRateLimiter(host string) *rate.Limiter {
	if p.rateLimit <= 0 {
		return nil
	}

	p.mu.RLock()
	limiter, exists := p.rateLimiters[host]
	p.mu.RUnlock()
	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if limiter, exists := p.rateLimiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.rateLimit), p.rateLimit)
	p.rateLimiters[host] = limiter
	return limiter
}

// check performs one hop through the host's limiter and breaker.
func (p *Prober) check(ctx context.Context, u *urlutil.URL) Hop {
	target := u.String()
	host := hostKey(u)

	if limiter := p.getOrCreateRateLimiter(host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return Hop{URL: target, Error: "rate limit wait: " + err.Error()}
		}
	}

	var hop Hop
	if breaker := p.getOrCreateCircuitBreaker(host); breaker != nil {
		output, err := breaker.Execute(func() (interface{}, error) {
			h := p.performRequest(ctx, target)
			if h.Error != "" {
				return h, errors.New(h.Error)
			}
			if h.StatusCode >= 500 {
				return h, fmt.Errorf("server error: %d", h.StatusCode)
			}
			return h, nil
		})

		switch typed, ok := output.(Hop); {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			hop = Hop{URL: target, Error: "circuit breaker open - host unavailable"}
		case ok:
			hop = typed
		default:
			hop = Hop{URL: target, Error: fmt.Sprintf("internal error: %v", err)}
		}
	} else {
		hop = p.performRequest(ctx, target)
	}

	if p.metrics {
		recordHop(host, hop)
	}
	logger.WithOperation("hop").Debug("probed",
		"url", hop.URL, "status", hop.StatusCode, "location", hop.Location, "error", hop.Error)
	return hop
}

// performRequest sends a single request without following redirects.
func (p *Prober) performRequest(ctx context.Context, target string) Hop {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, p.method, target, nil)
	if err != nil {
		return Hop{URL: target, Error: fmt.Sprintf("failed to create request: %v", err)}
	}

	resp, err := p.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Hop{URL: target, ResponseTime: elapsed, Error: fmt.Sprintf("connection failed: %v", err)}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
	_ = resp.Body.Close()

	return Hop{
		URL:          target,
		StatusCode:   resp.StatusCode,
		Location:     resp.Header.Get("Location"),
		ResponseTime: elapsed,
	}
}

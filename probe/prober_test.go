package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jongio/urlkit/urlutil"
)

func newRedirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/c?from=b", http.StatusFound)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/n/", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/n/"))
		http.Redirect(w, r, fmt.Sprintf("/n/%d", n+1), http.StatusFound)
	})
	mux.HandleFunc("/mail", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "mailto:joe@example.com")
		w.WriteHeader(http.StatusFound)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFollowChain(t *testing.T) {
	srv := newRedirectServer(t)
	p := New(Config{EnableMetrics: true})

	res := p.Follow(context.Background(), srv.URL+"/a")
	require.Empty(t, res.Error)
	require.Len(t, res.Hops, 3)
	assert.Equal(t, http.StatusMovedPermanently, res.Hops[0].StatusCode)
	assert.Equal(t, "/b", res.Hops[0].Location)
	assert.Equal(t, srv.URL+"/b", res.Hops[1].URL)
	assert.Equal(t, http.StatusFound, res.Hops[1].StatusCode)
	assert.Equal(t, srv.URL+"/c?from=b", res.Final)
	assert.Equal(t, http.StatusOK, res.Hops[2].StatusCode)
	assert.True(t, res.OK())
}

func TestFollowGet(t *testing.T) {
	srv := newRedirectServer(t)
	p := New(Config{Method: "get"})

	res := p.Follow(context.Background(), srv.URL+"/c")
	require.Len(t, res.Hops, 1)
	assert.True(t, res.OK())
}

func TestFollowLoop(t *testing.T) {
	srv := newRedirectServer(t)
	res := New(Config{}).Follow(context.Background(), srv.URL+"/loop")

	assert.Contains(t, res.Error, "redirect loop")
	assert.Len(t, res.Hops, 1)
	assert.False(t, res.OK())
}

func TestFollowMaxHops(t *testing.T) {
	srv := newRedirectServer(t)
	res := New(Config{MaxHops: 3}).Follow(context.Background(), srv.URL+"/n/0")

	assert.Equal(t, "stopped after 3 redirects", res.Error)
	assert.Len(t, res.Hops, 4)
}

func TestFollowUnsupportedScheme(t *testing.T) {
	srv := newRedirectServer(t)
	res := New(Config{}).Follow(context.Background(), srv.URL+"/mail")

	assert.Contains(t, res.Error, "unsupported scheme")
	assert.Len(t, res.Hops, 1)
}

func TestFollowRejectsInvalidStart(t *testing.T) {
	res := New(Config{}).Follow(context.Background(), "ftp://example.com/")

	assert.Contains(t, res.Error, "http:// or https://")
	assert.Empty(t, res.Hops)
	assert.Empty(t, res.Final)
}

func TestCircuitBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/"
	srv.Close()

	p := New(Config{
		EnableCircuitBreaker:   true,
		CircuitBreakerFailures: 2,
		CircuitBreakerTimeout:  time.Minute,
		Timeout:                time.Second,
	})

	for i := 0; i < 2; i++ {
		res := p.Follow(context.Background(), target)
		assert.Contains(t, res.Error, "connection failed")
	}

	res := p.Follow(context.Background(), target)
	assert.Equal(t, "circuit breaker open - host unavailable", res.Error)
}

func TestRateLimiterPerHost(t *testing.T) {
	p := New(Config{RateLimit: 5})
	a := p.getOrCreateRateLimiter("a.example.com")
	require.NotNil(t, a)
	assert.Same(t, a, p.getOrCreateRateLimiter("a.example.com"))
	assert.NotSame(t, a, p.getOrCreateRateLimiter("b.example.com"))

	assert.Nil(t, New(Config{}).getOrCreateRateLimiter("a.example.com"))
}

func TestRateLimitWaitCancelled(t *testing.T) {
	p := New(Config{RateLimit: 1})
	u := urlutil.MustParse("http://example.invalid/")
	limiter := p.getOrCreateRateLimiter(hostKey(u))
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hop := p.check(ctx, u)
	assert.Contains(t, hop.Error, "rate limit wait")
}

func TestResolveLocation(t *testing.T) {
	base := urlutil.MustParse("https://example.com:8443/docs/guide?x=1")

	tests := []struct {
		location string
		want     string
	}{
		{"/other", "https://example.com:8443/other"},
		{"intro", "https://example.com:8443/docs/intro"},
		{"?page=2", "https://example.com:8443/docs/guide?page=2"},
		{"//cdn.example.com/a", "https://cdn.example.com/a"},
		{"http://example.org", "http://example.org/"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, err := resolveLocation(base, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := resolveLocation(base, "http://bad host/")
	assert.ErrorIs(t, err, urlutil.ErrMalformed)
}

func TestHostKey(t *testing.T) {
	assert.Equal(t, "example.com", hostKey(urlutil.MustParse("https://example.com/")))
	assert.Equal(t, "example.com:8080", hostKey(urlutil.MustParse("http://example.com:8080/")))
}

func TestWriteMetrics(t *testing.T) {
	srv := newRedirectServer(t)
	p := New(Config{EnableMetrics: true, EnableCircuitBreaker: true, CircuitBreakerFailures: 1, CircuitBreakerTimeout: time.Minute})
	res := p.Follow(context.Background(), srv.URL+"/c")
	require.True(t, res.OK())

	var buf strings.Builder
	require.NoError(t, WriteMetrics(&buf, nil))
	assert.Contains(t, buf.String(), "urlkit_probe_hop_duration_seconds")
	assert.NotContains(t, buf.String(), "go_goroutines", "only probe metrics are written")
}

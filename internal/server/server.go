// Package server runs the urlkit redirect server: each configured rule maps
// a request path to a target URL, and matching requests are redirected
// through the redirect package.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/logutil"
	"github.com/jongio/urlkit/redirect"
	"github.com/jongio/urlkit/urlutil"
)

// route is a validated rule with its target parsed once.
type route struct {
	rule   config.Rule
	target *urlutil.URL
}

// Server serves the redirect rules of a config.Serve.
type Server struct {
	cfg        *config.Serve
	routes     []route
	limiter    *rate.Limiter
	router     chi.Router
	httpServer *http.Server
	logger     *logutil.ComponentLogger
}

// New validates cfg and builds the router.
func New(cfg *config.Serve) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logutil.NewLogger("server"),
	}
	for _, rule := range cfg.Rules {
		target, err := urlutil.Parse(rule.Target)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Path, err)
		}
		s.routes = append(s.routes, route{rule: rule, target: target})
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}

	s.router = s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("redirect server listening", "addr", s.httpServer.Addr, "rules", len(s.routes))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		for _, rt := range s.routes {
			r.Get(rt.rule.Path, s.redirectHandler(rt))
			r.Head(rt.rule.Path, s.redirectHandler(rt))
		}
	})
	return r
}

// redirectHandler resolves the target of rt against the request and
// redirects to it.
func (s *Server) redirectHandler(rt route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := resolve(rt, r)
		b := redirect.NewHTTPBoundary(w)
		if err := redirect.To(target, b, redirect.Options{StatusCode: rt.rule.Status}); err != nil {
			s.logger.Error("redirect failed", "path", rt.rule.Path, "error", err)
			http.Error(b, "redirect failed", http.StatusInternalServerError)
		}
	}
}

// resolve builds the redirect target for r. A target without a host takes
// scheme, host and port from the request; PreserveQuery copies the request
// query over the target query.
func resolve(rt route, r *http.Request) *urlutil.URL {
	target := rt.target.Clone()

	if target.Host() == "" {
		self := urlutil.FromRequest(r, urlutil.LoadOptions{
			SkipPath:     true,
			SkipUser:     true,
			SkipPassword: true,
			SkipQuery:    true,
		})
		target.SetScheme(self.Scheme())
		target.SetHost(self.Host())
		target.SetPort(self.Port())
	}

	if rt.rule.PreserveQuery {
		src := urlutil.NewRequestSource(r)
		src.CurrentQuery().Each(target.SetQueryParameter)
	}
	return target
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"location", ww.Header().Get("Location"),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

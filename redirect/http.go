package redirect

import (
	"errors"
	"net/http"
)

// ErrTerminated is returned by writes after the response was terminated.
var ErrTerminated = errors.New("response terminated")

// HTTPBoundary is an http.ResponseWriter that tracks whether the response has
// started and can be sealed by Terminate.
type HTTPBoundary struct {
	w          http.ResponseWriter
	started    bool
	terminated bool
}

var (
	_ Boundary            = (*HTTPBoundary)(nil)
	_ http.ResponseWriter = (*HTTPBoundary)(nil)
)

// NewHTTPBoundary wraps w. Handlers should write through the returned value
// so that Started stays accurate.
func NewHTTPBoundary(w http.ResponseWriter) *HTTPBoundary {
	return &HTTPBoundary{w: w}
}

// Header returns the underlying header map.
func (b *HTTPBoundary) Header() http.Header {
	return b.w.Header()
}

// WriteHeader sends the status line once. It is ignored after Terminate.
func (b *HTTPBoundary) WriteHeader(status int) {
	if b.started || b.terminated {
		return
	}
	b.started = true
	b.w.WriteHeader(status)
}

// Write sends body bytes, or fails with ErrTerminated once sealed.
func (b *HTTPBoundary) Write(p []byte) (int, error) {
	if b.terminated {
		return 0, ErrTerminated
	}
	b.started = true
	return b.w.Write(p)
}

// Started reports whether a status or body byte has been sent.
func (b *HTTPBoundary) Started() bool {
	return b.started
}

// Redirect sets Location and writes status.
func (b *HTTPBoundary) Redirect(location string, status int, replace bool) {
	if replace {
		b.w.Header().Set("Location", location)
	} else {
		b.w.Header().Add("Location", location)
	}
	b.WriteHeader(status)
}

// Terminate seals the response.
func (b *HTTPBoundary) Terminate() {
	b.terminated = true
}

// Terminated reports whether Terminate was called.
func (b *HTTPBoundary) Terminated() bool {
	return b.terminated
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (b *HTTPBoundary) Unwrap() http.ResponseWriter {
	return b.w
}

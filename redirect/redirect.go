// Package redirect issues HTTP redirects to URL values built by urlutil.
//
// The action talks to the response through a Boundary, so it works with any
// output that can report whether it has started, set a Location, and be
// sealed afterwards. HTTPBoundary adapts an http.ResponseWriter.
//
// # Usage
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		b := redirect.NewHTTPBoundary(w)
//		target := urlutil.FromRequest(r, urlutil.LoadOptions{})
//		target.SetPath("/login")
//		if err := redirect.To(target, b, redirect.Options{}); err != nil {
//			http.Error(b, err.Error(), http.StatusInternalServerError)
//		}
//		// anything written to b from here on is discarded
//	}
package redirect

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jongio/urlkit/logutil"
	"github.com/jongio/urlkit/urlutil"
)

// DefaultStatusCode is used when Options.StatusCode is zero.
const DefaultStatusCode = http.StatusFound

var (
	// ErrEmptyURL is returned when the URL has no component to redirect to.
	ErrEmptyURL = errors.New("cannot redirect to an empty url")
	// ErrResponseStarted is returned when the response is no longer writable.
	ErrResponseStarted = errors.New("cannot redirect: response already started")
	// ErrInvalidStatus is returned for a status code outside 300-399.
	ErrInvalidStatus = errors.New("invalid redirect status code")
)

var logger = logutil.NewLogger("redirect")

// Boundary is the response a redirect is written to.
type Boundary interface {
	// Started reports whether the response has begun and can no longer
	// take a redirect.
	Started() bool
	// Redirect points the response at location with the given status.
	// When replace is false an existing Location is kept alongside.
	Redirect(location string, status int, replace bool)
	// Terminate ends the response. Later output is discarded.
	Terminate()
}

// Options tunes To. The zero value issues a 302 that replaces any existing
// Location and terminates the response.
type Options struct {
	// StatusCode of the redirect; 0 means DefaultStatusCode.
	StatusCode int
	// KeepExisting adds the Location instead of replacing one already set.
	KeepExisting bool
	// NoTerminate leaves the response open after the redirect is issued.
	NoTerminate bool
}

// To redirects b to u.
//
// It fails with ErrEmptyURL when u is nil or has no components, with
// ErrResponseStarted when b has already started, and with ErrInvalidStatus
// for a non-3xx status. On success the response is terminated unless
// opts.NoTerminate is set.
func To(u *urlutil.URL, b Boundary, opts Options) error {
	log := logger.WithOperation("to")

	if u.IsZero() {
		redirectErrors.WithLabelValues("empty_url").Inc()
		return ErrEmptyURL
	}
	if b.Started() {
		redirectErrors.WithLabelValues("response_started").Inc()
		return ErrResponseStarted
	}

	status := opts.StatusCode
	if status == 0 {
		status = DefaultStatusCode
	}
	if status < 300 || status > 399 {
		redirectErrors.WithLabelValues("bad_status").Inc()
		return fmt.Errorf("%w %d", ErrInvalidStatus, status)
	}

	location := u.String()
	b.Redirect(location, status, !opts.KeepExisting)
	redirectsTotal.WithLabelValues(fmt.Sprint(status)).Inc()
	log.Debug("redirect issued", "location", location, "status", status)

	if !opts.NoTerminate {
		b.Terminate()
	}
	return nil
}

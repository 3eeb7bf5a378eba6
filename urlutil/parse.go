package urlutil

import (
	"fmt"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/jongio/urlkit/logutil"
)

// maxPort is the largest TCP/UDP port number.
const maxPort = 65535

var logger = logutil.NewLogger("urlutil")

// Parse decomposes raw into its components using generic URI syntax:
// scheme://[user[:password]@]host[:port]/path?query#fragment.
//
// The scheme is lower-cased. User, password and fragment are stored decoded.
// The path keeps its escaped form, so "%2F", "%3F" and "%23" survive a
// rebuild. Empty components are treated as absent and a port of zero is
// dropped. The query is decoded with ParseQuery.
//
// Any syntax error, including a bad escape in the query, fails the whole
// parse with an error wrapping ErrMalformed; no partial URL is returned.
//
// Example:
//
//	u, err := urlutil.Parse("https://alice@example.com:8443/docs?b=2&a=1#top")
//	if err != nil {
//		return fmt.Errorf("bad redirect target: %w", err)
//	}
//	fmt.Println(u.Host(), u.Port()) // example.com 8443
func Parse(raw string) (*URL, error) {
	parsed, err := neturl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	u := &URL{
		scheme:   strings.ToLower(parsed.Scheme),
		host:     parsed.Hostname(),
		path:     parsed.EscapedPath(),
		fragment: parsed.Fragment,
	}
	if u.path == "" && parsed.Opaque != "" {
		// "mailto:joe@example.com" keeps its opaque part as the path
		u.path = parsed.Opaque
	}

	if p := parsed.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port > maxPort {
			return nil, fmt.Errorf("%w: invalid port %q", ErrMalformed, p)
		}
		u.port = port
	}

	if parsed.User != nil {
		u.user = parsed.User.Username()
		u.password, _ = parsed.User.Password()
	}

	if parsed.RawQuery != "" {
		q, err := ParseQuery(parsed.RawQuery)
		if err != nil {
			return nil, err
		}
		u.query = q
	}

	return u, nil
}

// New parses raw and never fails.
//
// Malformed input yields a URL with every component absent, which renders as
// "/". The failure is only visible in debug logs; use Parse when the caller
// needs to know. New("") returns an empty URL.
func New(raw string) *URL {
	if raw == "" {
		return &URL{}
	}
	u, err := Parse(raw)
	if err != nil {
		logger.WithOperation("new").Debug("discarding malformed url", "error", err)
		return &URL{}
	}
	return u
}

// MustParse is like Parse but panics on error. It simplifies initialization
// of package-level URLs and tests.
func MustParse(raw string) *URL {
	u, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("urlutil: Parse(%q): %v", raw, err))
	}
	return u
}

package urlutil

import (
	"net"
	"net/http"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
)

// Source supplies the components of the URL currently being served.
// Implementations return "" or 0 for anything they do not know.
type Source interface {
	CurrentScheme() string
	CurrentHost() string
	CurrentPort() int
	CurrentPath() string
	CurrentUser() string
	CurrentPassword() string
	CurrentQuery() *Query
}

// LoadOptions selects which components FromSource leaves unset.
// The zero value copies all of them.
type LoadOptions struct {
	SkipScheme   bool
	SkipHost     bool
	SkipPort     bool
	SkipPath     bool
	SkipUser     bool
	SkipPassword bool
	SkipQuery    bool
}

// FromSource builds a URL by copying components from src. Fragments are never
// sent to servers, so no source provides one.
func FromSource(src Source, opts LoadOptions) *URL {
	u := &URL{}
	if !opts.SkipScheme {
		u.SetScheme(src.CurrentScheme())
	}
	if !opts.SkipHost {
		u.host = src.CurrentHost()
	}
	if !opts.SkipPort {
		u.SetPort(src.CurrentPort())
	}
	if !opts.SkipPath {
		u.path = src.CurrentPath()
	}
	if !opts.SkipUser {
		u.user = src.CurrentUser()
	}
	if !opts.SkipPassword {
		u.password = src.CurrentPassword()
	}
	if !opts.SkipQuery {
		if q := src.CurrentQuery(); q != nil {
			u.query = q.Clone()
		}
	}
	return u
}

// FromRequest is shorthand for FromSource(NewRequestSource(r), opts).
func FromRequest(r *http.Request, opts LoadOptions) *URL {
	return FromSource(NewRequestSource(r), opts)
}

// SplitCredentials splits a combined "user:password" credential on the first
// colon. Without a colon the whole string is the user and the password is "".
func SplitCredentials(userInfo string) (user, password string) {
	user, password, _ = strings.Cut(userInfo, ":")
	return user, password
}

// RequestSource reads the URL of an inbound HTTP request.
type RequestSource struct {
	scheme   string
	host     string
	port     int
	path     string
	userInfo string
	rawQuery string
}

var _ Source = (*RequestSource)(nil)

// NewRequestSource captures the request URI of r.
//
// The scheme comes from the request URL when absolute, otherwise from the
// connection (https when TLS is set). Host and port come from the Host header,
// falling back to the request URL. Credentials are the decoded userinfo of
// the request URI.
func NewRequestSource(r *http.Request) *RequestSource {
	s := &RequestSource{
		scheme:   r.URL.Scheme,
		path:     r.URL.EscapedPath(),
		rawQuery: r.URL.RawQuery,
	}
	if s.scheme == "" {
		s.scheme = "http"
		if r.TLS != nil {
			s.scheme = "https"
		}
	}

	hostport := r.Host
	if hostport == "" {
		hostport = r.URL.Host
	}
	s.host, s.port = splitHostPort(hostport)

	if r.URL.User != nil {
		if info, err := neturl.PathUnescape(r.URL.User.String()); err == nil {
			s.userInfo = info
		}
	}
	return s
}

func splitHostPort(hostport string) (string, int) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port > maxPort {
		return host, 0
	}
	return host, port
}

func (s *RequestSource) CurrentScheme() string { return s.scheme }
func (s *RequestSource) CurrentHost() string   { return s.host }
func (s *RequestSource) CurrentPort() int      { return s.port }
func (s *RequestSource) CurrentPath() string   { return s.path }

func (s *RequestSource) CurrentUser() string {
	user, _ := SplitCredentials(s.userInfo)
	return user
}

func (s *RequestSource) CurrentPassword() string {
	_, password := SplitCredentials(s.userInfo)
	return password
}

// CurrentQuery re-parses the raw request query. Pairs with bad escapes are
// dropped and logged at debug level.
func (s *RequestSource) CurrentQuery() *Query {
	q, err := ParseQuery(s.rawQuery)
	if err != nil {
		logger.WithOperation("request-query").Debug("dropping undecodable query pairs", "error", err)
	}
	return q
}

// EnvSource reads the current URL from CGI/1.1 meta-variables
// (RFC 3875), the ambient environment of a CGI or FastCGI program.
type EnvSource struct {
	// Lookup resolves a variable. Nil means os.LookupEnv.
	Lookup func(key string) (string, bool)
}

var _ Source = EnvSource{}

// NewEnvSource returns an EnvSource backed by the process environment.
func NewEnvSource() EnvSource {
	return EnvSource{Lookup: os.LookupEnv}
}

func (s EnvSource) get(keys ...string) string {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keys {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
	}
	return ""
}

func (s EnvSource) CurrentScheme() string {
	if scheme := s.get("REQUEST_SCHEME"); scheme != "" {
		return strings.ToLower(scheme)
	}
	if https := strings.ToLower(s.get("HTTPS")); https != "" && https != "off" {
		return "https"
	}
	return "http"
}

func (s EnvSource) CurrentHost() string {
	host, _ := splitHostPort(s.get("HTTP_HOST", "SERVER_NAME"))
	return host
}

func (s EnvSource) CurrentPort() int {
	port, err := strconv.Atoi(s.get("SERVER_PORT"))
	if err != nil || port <= 0 || port > maxPort {
		return 0
	}
	return port
}

// CurrentPath prefers the path part of REQUEST_URI and falls back to
// SCRIPT_NAME followed by PATH_INFO.
func (s EnvSource) CurrentPath() string {
	if uri := s.get("REQUEST_URI"); uri != "" {
		path, _, _ := strings.Cut(uri, "?")
		return path
	}
	return s.get("SCRIPT_NAME") + s.get("PATH_INFO")
}

func (s EnvSource) CurrentUser() string {
	return s.get("AUTH_USER", "REMOTE_USER")
}

func (s EnvSource) CurrentPassword() string {
	return s.get("AUTH_PASSWORD")
}

func (s EnvSource) CurrentQuery() *Query {
	q, err := ParseQuery(s.get("QUERY_STRING"))
	if err != nil {
		logger.WithOperation("env-query").Debug("dropping undecodable query pairs", "error", err)
	}
	return q
}

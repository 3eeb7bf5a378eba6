package urlutil

import (
	"errors"
	"strings"
)

// DefaultScheme is rendered when a URL with a host has no scheme.
const DefaultScheme = "http"

var (
	// ErrMalformed is wrapped by every parse failure.
	ErrMalformed = errors.New("malformed url")
	// ErrEmpty is returned when validating a blank URL.
	ErrEmpty = errors.New("url cannot be empty")
)

// defaultPorts lists the well-known port of each scheme. It is consulted only
// when building, to drop a redundant ":port", and is never written into a URL.
var defaultPorts = map[string]int{
	"ftp":   21,
	"ssh":   22,
	"sftp":  22,
	"http":  80,
	"https": 443,
}

// DefaultPort returns the well-known port for scheme.
func DefaultPort(scheme string) (int, bool) {
	port, ok := defaultPorts[strings.ToLower(scheme)]
	return port, ok
}

// URL is a mutable URL value made of independent components.
//
// Empty strings and a zero port mean "absent". A URL is owned by its creator
// and is not safe for concurrent mutation; String and Build recompute the
// result from the current components on every call.
type URL struct {
	scheme   string
	host     string
	port     int
	user     string
	password string
	path     string
	query    *Query
	fragment string
}

// Scheme returns the lower-case scheme, or "" when absent.
func (u *URL) Scheme() string { return u.scheme }

// HasScheme reports whether the URL scheme equals scheme, ignoring case.
func (u *URL) HasScheme(scheme string) bool {
	return u.scheme == strings.ToLower(scheme)
}

// Host returns the host name or IP literal as given.
func (u *URL) Host() string { return u.host }

// Port returns the explicit port, or 0 when absent. The scheme's
// well-known port is never reported here.
func (u *URL) Port() int { return u.port }

// User returns the decoded user name.
func (u *URL) User() string { return u.user }

// Password returns the decoded password.
func (u *URL) Password() string { return u.password }

// Path returns the path in its escaped form, or "" when absent.
func (u *URL) Path() string { return u.path }

// Fragment returns the decoded fragment.
func (u *URL) Fragment() string { return u.fragment }

// Query returns the query parameters. The returned Query is live: changes
// made through it are visible in later builds. It is never nil.
func (u *URL) Query() *Query {
	if u.query == nil {
		u.query = NewQuery()
	}
	return u.query
}

// QueryString returns the encoded query joined with sep ("&" when empty), or
// "" when there are no parameters.
func (u *URL) QueryString(sep string) string {
	return u.query.Encode(sep)
}

// HasQueryParameter reports whether name is present in the query.
func (u *URL) HasQueryParameter(name string) bool {
	return u.query.Has(name)
}

// QueryParameter returns the value of name and whether it is present.
func (u *URL) QueryParameter(name string) (string, bool) {
	return u.query.Get(name)
}

// SetScheme stores scheme lower-cased.
func (u *URL) SetScheme(scheme string) { u.scheme = strings.ToLower(scheme) }

// SetHost stores host as given.
func (u *URL) SetHost(host string) { u.host = host }

// SetPort stores port. Zero or negative values clear it.
func (u *URL) SetPort(port int) {
	if port < 0 {
		port = 0
	}
	u.port = port
}

// SetUser stores the decoded user name.
func (u *URL) SetUser(user string) { u.user = user }

// SetPassword stores the decoded password.
func (u *URL) SetPassword(password string) { u.password = password }

// SetPath stores path verbatim. It is emitted without encoding, so callers
// pass an already escaped path.
func (u *URL) SetPath(path string) { u.path = path }

// SetFragment stores the decoded fragment.
func (u *URL) SetFragment(fragment string) { u.fragment = fragment }

// SetQuery replaces the query. A nil query clears it.
func (u *URL) SetQuery(q *Query) { u.query = q }

// SetQueryParameter stores a single query parameter.
func (u *URL) SetQueryParameter(name, value string) {
	u.Query().Set(name, value)
}

// DelQueryParameter removes a query parameter and reports whether it existed.
func (u *URL) DelQueryParameter(name string) bool {
	return u.query.Del(name)
}

// IsZero reports whether every component is absent.
func (u *URL) IsZero() bool {
	return u == nil || (u.scheme == "" && u.host == "" && u.port == 0 &&
		u.user == "" && u.password == "" && u.path == "" &&
		u.query.Len() == 0 && u.fragment == "")
}

// Clone returns a deep copy of u. Cloning nil returns nil.
func (u *URL) Clone() *URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.query != nil {
		c.query = u.query.Clone()
	}
	return &c
}

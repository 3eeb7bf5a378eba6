package urlutil

import (
	neturl "net/url"
	"strconv"
	"strings"
)

// BuildOptions selects which components Build leaves out.
// The zero value includes every component that is present.
type BuildOptions struct {
	// OmitHost drops scheme, credentials, host and port, producing a
	// path-relative reference.
	OmitHost bool
	// OmitUser drops user and password.
	OmitUser bool
	// OmitPort drops the port even when it differs from the scheme default.
	OmitPort bool
	// OmitQuery drops the query string.
	OmitQuery bool
	// OmitFragment drops the fragment.
	OmitFragment bool
}

// Build assembles a URL string from the current components.
//
// When a host is present (and not omitted) the result starts with
// "scheme://", using DefaultScheme if no scheme is set, followed by the
// form-encoded credentials, the host as given, and ":port" unless the port
// is the scheme's well-known one. The path follows verbatim, or "/" when
// absent; it is never encoded, so callers can store pre-encoded paths. Then
// come "?query" and a form-encoded "#fragment".
//
// Build is total: a URL without components renders as "/".
func (u *URL) Build(opts BuildOptions) string {
	if u == nil {
		return "/"
	}

	var b strings.Builder

	if !opts.OmitHost && u.host != "" {
		scheme := u.scheme
		if scheme == "" {
			scheme = DefaultScheme
		}
		b.WriteString(scheme)
		b.WriteString("://")

		if !opts.OmitUser && u.user != "" {
			b.WriteString(neturl.QueryEscape(u.user))
			if u.password != "" {
				b.WriteByte(':')
				b.WriteString(neturl.QueryEscape(u.password))
			}
			b.WriteByte('@')
		}

		b.WriteString(u.host)

		if !opts.OmitPort && u.port != 0 {
			if def, ok := defaultPorts[scheme]; !ok || def != u.port {
				b.WriteByte(':')
				b.WriteString(strconv.Itoa(u.port))
			}
		}
	}

	if u.path != "" {
		b.WriteString(u.path)
	} else {
		b.WriteByte('/')
	}

	if !opts.OmitQuery && u.query.Len() > 0 {
		b.WriteByte('?')
		b.WriteString(u.query.Encode(DefaultQuerySeparator))
	}

	if !opts.OmitFragment && u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(neturl.QueryEscape(u.fragment))
	}

	return b.String()
}

// String returns the URL with every present component.
func (u *URL) String() string {
	return u.Build(BuildOptions{})
}

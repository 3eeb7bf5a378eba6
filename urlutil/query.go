package urlutil

import (
	"fmt"
	neturl "net/url"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DefaultQuerySeparator joins encoded query pairs when no separator is given.
const DefaultQuerySeparator = "&"

// Query is an ordered mapping of query parameter names to values.
//
// Keys are unique. Setting an existing key replaces its value but keeps the
// position of its first insertion, so encoding is reproducible. A valueless
// flag such as "?debug" is stored with an empty value.
//
// The zero value is an empty query ready to use. A Query is not safe for
// concurrent mutation.
type Query struct {
	pairs *orderedmap.OrderedMap[string, string]
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{pairs: orderedmap.New[string, string]()}
}

func (q *Query) ensure() *orderedmap.OrderedMap[string, string] {
	if q.pairs == nil {
		q.pairs = orderedmap.New[string, string]()
	}
	return q.pairs
}

// ParseQuery decodes a raw query string using form-encoding rules.
//
// Pairs are split on "&" only, whatever separator the query is later encoded
// with. "+" decodes to a space and %XX escapes are resolved. A pair without
// "=" yields an empty value, pairs with an empty name are dropped, and a
// repeated name keeps its last value.
//
// Like net/url.ParseQuery, every pair that decodes cleanly is returned along
// with the first decoding error, which wraps ErrMalformed.
func ParseQuery(raw string) (*Query, error) {
	q := NewQuery()
	var firstErr error
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := neturl.QueryUnescape(rawKey)
		if err == nil {
			var value string
			value, err = neturl.QueryUnescape(rawValue)
			if err == nil {
				if key != "" {
					q.Set(key, value)
				}
				continue
			}
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%w: query pair %q: %v", ErrMalformed, pair, err)
		}
	}
	return q, firstErr
}

// Encode renders the query in insertion order.
//
// Pairs are joined with sep, or "&" when sep is empty. Names and values are
// form-encoded and "=value" is omitted for empty values. An empty query
// encodes to the empty string.
func (q *Query) Encode(sep string) string {
	if q.Len() == 0 {
		return ""
	}
	if sep == "" {
		sep = DefaultQuerySeparator
	}

	var b strings.Builder
	for pair := q.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(neturl.QueryEscape(pair.Key))
		if pair.Value != "" {
			b.WriteByte('=')
			b.WriteString(neturl.QueryEscape(pair.Value))
		}
	}
	return b.String()
}

// Get returns the value stored for name and whether it is present.
func (q *Query) Get(name string) (string, bool) {
	if q == nil || q.pairs == nil {
		return "", false
	}
	return q.pairs.Get(name)
}

// Has reports whether name is present, valueless flags included.
func (q *Query) Has(name string) bool {
	_, ok := q.Get(name)
	return ok
}

// Set stores value under name.
func (q *Query) Set(name, value string) {
	q.ensure().Set(name, value)
}

// Del removes name and reports whether it was present.
func (q *Query) Del(name string) bool {
	if q == nil || q.pairs == nil {
		return false
	}
	_, present := q.pairs.Delete(name)
	return present
}

// Len returns the number of parameters.
func (q *Query) Len() int {
	if q == nil || q.pairs == nil {
		return 0
	}
	return q.pairs.Len()
}

// Keys returns the parameter names in insertion order.
func (q *Query) Keys() []string {
	keys := make([]string, 0, q.Len())
	q.Each(func(name, _ string) {
		keys = append(keys, name)
	})
	return keys
}

// Each calls fn for every parameter in insertion order.
func (q *Query) Each(fn func(name, value string)) {
	if q.Len() == 0 {
		return
	}
	for pair := q.pairs.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a deep copy of q. Cloning a nil query returns an empty one.
func (q *Query) Clone() *Query {
	c := NewQuery()
	q.Each(c.Set)
	return c
}

// String returns the query encoded with the default separator.
func (q *Query) String() string {
	return q.Encode("")
}

// MarshalJSON encodes the query as a JSON object preserving order.
func (q *Query) MarshalJSON() ([]byte, error) {
	if q.Len() == 0 {
		return []byte("{}"), nil
	}
	return q.pairs.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object of string values, keeping document order.
func (q *Query) UnmarshalJSON(data []byte) error {
	q.pairs = orderedmap.New[string, string]()
	return q.pairs.UnmarshalJSON(data)
}

// MarshalYAML encodes the query as a YAML mapping preserving order.
func (q *Query) MarshalYAML() (interface{}, error) {
	return q.ensure().MarshalYAML()
}

// UnmarshalYAML decodes a YAML mapping, keeping document order.
func (q *Query) UnmarshalYAML(value *yaml.Node) error {
	q.pairs = orderedmap.New[string, string]()
	return q.pairs.UnmarshalYAML(value)
}

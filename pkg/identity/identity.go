// Package identity canonicalizes professional-profile URLs into identity keys
// and classifies column headers by the role they play in a lead list.
//
// Identity keys are used only for equality matching across independently
// sourced categories; they are never displayed.
package identity

import (
	"net/url"
	"strings"
)

// Normalize returns the identity key for a profile URL.
//
// Blank input, or input that does not start with http:// or https://,
// yields "". Parsed URLs reduce to scheme://host/path with query, fragment
// and userinfo dropped and trailing slashes removed (a path of only
// slashes becomes "/"). Casing is preserved. When the URL cannot be parsed
// a lexical fallback cuts at the first '?' or '#' instead.
//
// Normalize is total and idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if !hasScheme(s) {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return lexical(s)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return u.Scheme + "://" + u.Host + trimSlash(path)
}

// Key returns the first non-empty identity key among values.
func Key(values ...string) string {
	for _, v := range values {
		if k := Normalize(v); k != "" {
			return k
		}
	}
	return ""
}

// Equal reports whether two raw values share a non-empty identity key.
func Equal(a, b string) bool {
	ka := Normalize(a)
	return ka != "" && ka == Normalize(b)
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func lexical(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	// The slashes of "scheme://" are not part of the path.
	start := strings.Index(s, "://") + len("://")
	return s[:start] + strings.TrimRight(s[start:], "/")
}

// trimSlash drops every trailing slash; a path of only slashes becomes "/".
func trimSlash(path string) string {
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}

// Package norm defines the canonicalization rules used to decide when two
// records are the same during merge and import. These functions are the sole
// source of truth for duplicate detection; nothing else re-derives them.
package norm

import (
	"fmt"
	"net/url"
	"strings"
)

// Name returns the comparison key for a folder or tag name: leading and
// trailing whitespace trimmed, no case folding.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// URL parses a raw URL string into its canonical absolute form. Strings
// without an http:// or https:// prefix (case-insensitive) get https://
// prepended before parsing, so host:port forms like localhost:3000
// canonicalize instead of parsing as a scheme. Strings that do not parse to
// an http/https URL with a host are rejected.
func URL(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	lower := strings.ToLower(candidate)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// URLKey returns the deduplication key for a link URL: the canonical form
// when the URL parses, otherwise the trimmed raw string so malformed records
// can still be matched exactly.
func URLKey(raw string) string {
	if canonical, ok := URL(raw); ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// Host returns the URL's host without a leading "www." prefix.
func Host(raw string) string {
	canonical, ok := URL(raw)
	if !ok {
		return ""
	}
	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// FaviconURL returns the favicon endpoint for a link URL, or "" when the URL
// has no resolvable host.
func FaviconURL(raw string) string {
	canonical, ok := URL(raw)
	if !ok {
		return ""
	}
	u, err := url.Parse(canonical)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", u.Host)
}

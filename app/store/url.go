package store

import (
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL indicates a url that failed validation or normalization.
// All errors returned by NormalizeURL wrap it.
var ErrInvalidURL = fmt.Errorf("invalid url")

// NormalizeURL produces the canonical form of a job url used as the entry
// key. Rules: surrounding whitespace trimmed, absolute http/https only,
// scheme and host lowercased, default port dropped, fragment dropped,
// trailing slash stripped (a bare root path collapses to none, so
// "https://a.com/" and "https://a.com" are the same entry). Query string is
// kept as-is because job boards commonly encode the posting identity in it.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q in %q", ErrInvalidURL, u.Scheme, trimmed)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, trimmed)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	// drop default ports, they don't change identity
	if (scheme == "http" && u.Port() == "80") || (scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	}

	return u.String(), nil
}

package agent

import (
	"net/url"
	"regexp"
	"strings"
)

// urlRegex pulls raw URL-shaped tokens out of free text, grounded in the
// teacher's own ExtractURLs-style link scraping.
var urlRegex = regexp.MustCompile(`https?://[^\s\]\)"'<>]+`)

// canonicalizeURL unwraps known redirect wrappers, promotes
// protocol-relative links to https, and rejects malformed input.
// Canonicalization is idempotent: canon(canon(u)) == canon(u).
func canonicalizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	if unwrapped, ok := unwrapRedirect(raw); ok {
		raw = unwrapped
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	u.Fragment = ""
	return u.String(), true
}

// unwrapRedirect recognizes "…/l/?uddg=<encoded>"-style redirect wrappers
// (DuckDuckGo-style link proxies) and returns the decoded inner target.
func unwrapRedirect(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !strings.HasSuffix(u.Path, "/l/") {
		return "", false
	}
	target := u.Query().Get("uddg")
	if target == "" {
		return "", false
	}
	decoded, err := url.QueryUnescape(target)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// domainOf returns the host of a canonical URL with a leading "www."
// stripped, for use as Source Info's domain field.
func domainOf(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// extractURLs pulls every URL-shaped token out of free text.
func extractURLs(text string) []string {
	return urlRegex.FindAllString(text, -1)
}

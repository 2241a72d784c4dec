package menutree

import "strings"

// NormalizeHref canonicalizes a stored item URL. Absolute http(s) URLs are
// kept verbatim; anything else becomes a path with exactly one leading slash.
// Trailing slashes are preserved: stored hrefs are compared against each other
// for duplicate detection, where "/a" and "/a/" are different entries.
func NormalizeHref(raw string) string {
	href := strings.TrimSpace(raw)
	if href == "" {
		return ""
	}
	if isAbsoluteURL(href) {
		return href
	}
	return "/" + strings.TrimLeft(href, "/")
}

// NormalizePath canonicalizes a request path for activation matching.
// Unlike NormalizeHref it also drops trailing slashes, so "/a/" and "/a"
// compare equal. Keep the two functions separate.
func NormalizePath(raw string) string {
	p := strings.TrimLeft(strings.TrimSpace(raw), "/")
	if p == "" {
		return "/"
	}
	return "/" + strings.TrimRight(p, "/")
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

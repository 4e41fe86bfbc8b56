package render

import (
	"strings"
)

// SafeURL returns raw unless its scheme can execute script, in which case it
// returns fallback. Image data URIs pass when allowImageData is set.
func SafeURL(raw, fallback string, allowImageData bool) string {
	trimmed := strings.TrimSpace(raw)
	scheme, ok := urlScheme(trimmed)
	if !ok {
		return trimmed
	}
	switch scheme {
	case "javascript", "vbscript":
		return fallback
	case "data":
		if allowImageData && strings.HasPrefix(strings.ToLower(stripControl(trimmed)), "data:image/") {
			return trimmed
		}
		return fallback
	}
	return trimmed
}

// urlScheme extracts a lower-cased scheme the way browsers read it, ignoring
// embedded tabs, newlines and control characters.
func urlScheme(s string) (string, bool) {
	clean := stripControl(s)
	i := strings.IndexByte(clean, ':')
	if i <= 0 {
		return "", false
	}
	if strings.ContainsAny(clean[:i], "/?#") {
		return "", false
	}
	return strings.ToLower(clean[:i]), true
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

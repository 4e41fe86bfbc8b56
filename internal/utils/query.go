package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeQuery trims surrounding whitespace from raw input.
func NormalizeQuery(raw string) string {
	return strings.TrimSpace(raw)
}

// QueryLen counts runes, so "é" is one character.
func QueryLen(q string) int {
	return utf8.RuneCountInString(q)
}

// Ellipsize shortens s to at most n runes, marking the cut with "…".
func Ellipsize(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

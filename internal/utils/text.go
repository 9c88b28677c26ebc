package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis is appended to text cut by Shorten and TruncateForLog.
const Ellipsis = "..."

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	return Shorten(s, limit)
}

// Shorten keeps at most max characters of text and appends an ellipsis when
// something was cut. Unlike TruncateForLog the text is not trimmed.
func Shorten(text string, max int) string {
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + Ellipsis
}

// CapitalizeFirst upper-cases the first letter of s.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// CollapseSpaces replaces every run of two or more whitespace characters with a
// single space.
func CollapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	run := 0
	var first rune
	flush := func() {
		switch {
		case run == 1:
			b.WriteRune(first)
		case run > 1:
			b.WriteByte(' ')
		}
		run = 0
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			if run == 0 {
				first = r
			}
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()

	return b.String()
}

package history

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize keeps the letters, digits, spaces, hyphens and underscores
// of name and drops everything else.  Path separators and dots never
// survive, so the result is always a single, non-traversing path
// element.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return r
		case r == ' ', r == '-', r == '_':
			return r
		}
		return -1
	}, name)
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

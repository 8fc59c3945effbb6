// Package sanitize provides text sanitization utilities for user-derived
// values that end up in filesystem paths or download headers.
package sanitize

import (
	"strings"
)

// Filename reduces a user-provided name to characters that are safe in an
// attachment filename: letters, digits, spaces and underscores. Everything
// else is dropped and trailing whitespace trimmed.
func Filename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// FilenameOr returns Filename(s), or fallback when the result is empty.
func FilenameOr(s, fallback string) string {
	result := Filename(s)
	if result == "" {
		return fallback
	}
	return result
}

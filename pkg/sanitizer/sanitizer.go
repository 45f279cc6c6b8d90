// Package sanitizer normalizes claimant-supplied strings before validation
// and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs to
// single spaces, dropping control characters.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// skip
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizePhone(phone string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r == '+' || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeNotes keeps newlines, unlike TrimAndNormalize, since notes are
// free-form text.
func NormalizeNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ""
	}

	var result strings.Builder
	for _, r := range notes {
		if r == '\n' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

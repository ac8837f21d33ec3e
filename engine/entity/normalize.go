package entity

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a name for matching: lowercase, trim, strip
// punctuation, collapse whitespace runs to single spaces. It is total and
// idempotent; empty input yields empty output.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes Unicode, drops combining marks, lowercases,
// turns everything outside [a-z0-9] into a space and collapses runs.
// All matching rules operate on this form; the raw text is kept
// separately for flow fields that should preserve user phrasing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsAny reports whether text contains any of the terms. Terms
// are normalized before matching so rule tables can stay readable.
func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, Normalize(term)) {
			return true
		}
	}
	return false
}

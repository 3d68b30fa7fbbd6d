// Package taxonomy deduplicates category labels into canonical entries.
//
// Labels are compared through Normalize, matched exactly, through registered
// aliases, or fuzzily by edit distance, and new canonical entries are created
// only when nothing matches.
package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultCategory replaces an empty category.
	DefaultCategory = "Uncategorized"
	// DefaultSubcategory replaces an empty subcategory.
	DefaultSubcategory = "General"
)

// qualifiers are generic trailing words that do not change what a label means,
// e.g. "Graphics files" and "Graphics".
var qualifiers = map[string]struct{}{
	"file":    {},
	"files":   {},
	"folder":  {},
	"folders": {},
	"item":    {},
	"items":   {},
}

// Normalize returns the comparison key for a label: lowercase letters and
// digits separated by single spaces, diacritics folded, trailing generic
// qualifiers dropped. It is idempotent and never used for display.
func Normalize(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}

	words := strings.Fields(b.String())
	for len(words) > 1 {
		if _, ok := qualifiers[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// SanitizeLabel cleans a label for display and storage: trims it, collapses
// whitespace and removes control characters and path separators.
func SanitizeLabel(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return ' '
		case unicode.IsControl(r):
			return ' '
		}
		return r
	}, label)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Package search produces the normalized form of note titles used for
// case-insensitive, diacritic-insensitive substring matching.  The same
// function feeds both the stored title_search column and incoming search
// terms, so the two sides always agree on the alphabet.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder decomposes to NFD, strips combining marks and recomposes.
// "Café" -> "Cafe", "Zurück" -> "Zuruck".
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s and removes diacritics.  When the transform
// fails on malformed input the lowercased original is returned so a
// search is still possible, just without folding.
func Normalize(s string) string {
	folded, _, err := transform.String(folder, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

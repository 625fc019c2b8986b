package boundary

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripper decomposes text (NFKD) and removes combining marks, so accented
// attribute values become plain ASCII ("Ñuñoa" → "Nunoa"). Case, hyphens and
// spacing are preserved.
var stripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize strips diacritical marks from an attribute value. Input that
// cannot be transformed is returned unchanged.
func Normalize(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}

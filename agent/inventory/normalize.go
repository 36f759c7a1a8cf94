package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const quoteChars = "'\"`‘’“”«»"

// đ has no canonical decomposition, so NFD alone leaves it in place.
var strokeReplacer = strings.NewReplacer("đ", "d", "Đ", "d")

// Normalize folds a spoken or written item name into an inventory key:
// surrounding quotes trimmed, lowercased, diacritics removed, inner
// whitespace collapsed.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, quoteChars)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strokeReplacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// compact drops separators so "icecream" and "ice-cream" meet "ice cream".
func compact(key string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, key)
}

package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer strips combining marks after NFD decomposition, which folds
// diacritic variance across the supported languages before pattern matching.
var normalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize case-folds the text and removes diacritics. Both queries and the
// routing tables go through the same normalization, so matching stays
// consistent even where decomposition changes letters (й → и).
func Normalize(s string) string {
	out, _, err := transform.String(normalizer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// ukrToLatin is the Ukrainian-to-Latin transliteration table used when
// expanding proper nouns into search keywords.
var ukrToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g", 'д': "d", 'е': "e",
	'є': "ie", 'ж': "zh", 'з': "z", 'и': "y", 'і': "i", 'ї': "i", 'й': "i",
	'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ю': "iu", 'я': "ia", 'ь': "",
}

// Transliterate renders a Ukrainian word in Latin letters; characters outside
// the table pass through unchanged.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if lat, ok := ukrToLatin[r]; ok {
			b.WriteString(lat)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

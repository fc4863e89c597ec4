// Package normalize canonicalizes raw cell values extracted from business
// cards, QR payloads and scraped websites. Every function is total: bad
// input produces an empty string, never an error.
package normalize

import (
	"strings"
	"unicode"
)

// nullSentinels are placeholder tokens emitted by upstream extractors for
// absent values. Compared case-insensitively.
var nullSentinels = map[string]struct{}{
	"nan":  {},
	"none": {},
	"nat":  {},
	"null": {},
}

// persianDigits maps the Persian digit block (U+06F0..U+06F9) to ASCII.
var persianDigits = map[rune]rune{
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// Clean canonicalizes a single cell value. Null-like sentinels become empty
// strings, surrounding whitespace is trimmed, leading "=" runes are stripped
// (escaped formula, not executable), values starting with "#" are blanked
// (propagated spreadsheet error), and Persian digits are transliterated to
// ASCII. Clean is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(s string) string {
	// Trimming can expose another leading "=" ("=  =nan"), so strip to a
	// fixed point.
	for {
		t := strings.TrimLeft(strings.TrimSpace(s), "=")
		if t == s {
			break
		}
		s = t
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return ""
	}
	s = Digits(s)
	if _, ok := nullSentinels[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

// Digits transliterates Persian decimal digits to ASCII, leaving every
// other rune untouched.
func Digits(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { _, ok := persianDigits[r]; return ok }) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if d, ok := persianDigits[r]; ok {
			return d
		}
		return r
	}, s)
}

// Key returns the comparison form of a value: cleaned, lower-cased. Two
// values with the same Key are treated as duplicates during merging.
func Key(s string) string {
	return strings.ToLower(Clean(s))
}

// IsPersian reports whether the text contains any rune from the
// Arabic/Persian script block (U+0600..U+06FF).
func IsPersian(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// Domain reduces a URL-ish value to its bare host: scheme and "www." are
// stripped, the host is cut at the first "/" or "?", trailing dots removed.
// Returns "" when no host remains.
func Domain(url string) string {
	u := strings.ToLower(strings.TrimSpace(url))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexAny(u, "/?"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, ".")
}

// Phone strips everything but decimal digits from a phone value, after
// Persian digit transliteration.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range Digits(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// companyStopwords are removed from company names before hashing. Substring
// removal in this order mirrors the upstream extractors; "co." must precede
// "co" so the dot does not survive.
var companyStopwords = []string{
	"شرکت", "company", "co.", "co", "ltd", "inc", "corp",
	"سهامی", "خاص", "عام", "private", "public", "holding",
	"international", "بین المللی", "گروه", "group",
}

// CompanyName reduces a company name to a fuzzy comparison form: lower-cased,
// stop words removed, punctuation collapsed to spaces, whitespace collapsed.
func CompanyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	for _, w := range companyStopwords {
		n = strings.ReplaceAll(n, w, " ")
	}
	n = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, n)
	return strings.Join(strings.Fields(n), " ")
}

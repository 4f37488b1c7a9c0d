package vendors

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalForms are company-form words that do not identify a vendor.
var legalForms = map[string]bool{
	"ltd": true, "limited": true, "inc": true, "incorporated": true, "llc": true,
	"llp": true, "plc": true, "gmbh": true, "ag": true, "kg": true, "bv": true,
	"nv": true, "sa": true, "sarl": true, "sas": true, "srl": true, "sl": true,
	"oy": true, "ab": true, "as": true, "aps": true, "bvba": true, "vof": true,
	"corp": true, "corporation": true, "co": true, "company": true, "pty": true,
}

var stopwords = map[string]bool{
	"the": true, "and": true, "of": true, "for": true,
	"de": true, "het": true, "van": true, "der": true, "en": true,
}

// fold lowercases s and strips diacritics, so "Café Müller" becomes "cafe muller".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// words splits folded text on anything that is not a letter or digit. Dots
// are dropped first so that "B.V." reads as one word.
func words(s string) []string {
	s = strings.ReplaceAll(fold(s), ".", "")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NormalizeName reduces a vendor name to a comparable key: lowercase, no
// diacritics or punctuation, legal forms removed. A name made only of legal
// forms keeps them.
func NormalizeName(name string) string {
	all := words(name)
	kept := make([]string, 0, len(all))
	for _, w := range all {
		if !legalForms[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		kept = all
	}
	return strings.Join(kept, " ")
}

// NameTokens returns the distinct significant tokens of a vendor name.
func NameTokens(name string) []string {
	return significant(strings.Fields(NormalizeName(name)))
}

// addressTokens returns the distinct significant tokens of an address.
func addressTokens(addr string) []string {
	return significant(words(addr))
}

func significant(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, w := range in {
		if len([]rune(w)) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// NormalizeInvoiceNumber keeps only uppercase letters and digits, so
// "inv-2024/001" and "INV 2024 001" compare equal.
func NormalizeInvoiceNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, fold(s))
}

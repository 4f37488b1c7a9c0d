package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"smartfill/pkg/models"
)

const vatQualifier = `(?:[\s\-]*(?:number|nummer|no\.?|nr\.?|id|reg(?:istration)?\.?(?:\s+no\.?)?))?\s*[:\-#]?\s*`

var (
	// "NL VAT NL123456789B01": the leading code is case-sensitive.
	reVATWithCountry = regexp.MustCompile(`\b([A-Z]{2})\s+(?i:vat|btw)\b(?i:` + vatQualifier + `)(.*)$`)
	reVATLabel       = regexp.MustCompile(`(?i)\b(?:vat|btw)\b` + vatQualifier + `(.*)$`)

	reVATRateAfter  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[.,]\d+)?\s*%\s*(?:vat|btw|tax|mwst|tva|iva)\b`)
	reVATRateBefore = regexp.MustCompile(`(?i)\b(?:vat|btw)\s*\(?\s*(\d{1,2})(?:[.,]\d+)?\s*%`)
	reReverseCharge = regexp.MustCompile(`(?i)\breverse[\s\-]charge\b|\bverlegd\b|\bvat\s+reverse\b`)
	reMoneyLike     = regexp.MustCompile(`^[€$£]|^\d[\d.,]*[.,]\d{2}$`)
)

func (e *Extractor) detectVAT(doc *document, out *models.ExtractedFields) {
	if id, ok := e.vatNumber(doc); ok {
		setOnce(&out.VATNumber, id)
		if code, ok := e.tables.CountryCode(id[:2]); ok && isLetters(id[:2]) {
			setOnce(&out.VendorCountry, code)
		}
	}
	if rate, ok := firstOf(doc, vatRate); ok {
		setOnce(&out.BTW, rate)
	}
	if reReverseCharge.MatchString(doc.text) {
		setOnce(&out.ReverseCharge, true)
	}
}

func (e *Extractor) vatNumber(doc *document) (string, bool) {
	for _, line := range doc.collapsed {
		if m := reVATWithCountry.FindStringSubmatch(line); m != nil {
			if id, ok := e.normalizeVATNumber(m[2], m[1]); ok {
				return id, true
			}
		}
		if m := reVATLabel.FindStringSubmatch(line); m != nil {
			if id, ok := e.normalizeVATNumber(m[1], ""); ok {
				return id, true
			}
		}
	}
	return "", false
}

// normalizeVATNumber reads the identifier at the start of rest. Digit groups
// separated by spaces are joined ("GB 123 4567 89"). The country prefix is
// added from prefix when the identifier does not already carry one.
func (e *Extractor) normalizeVATNumber(rest, prefix string) (string, bool) {
	if first := strings.Fields(rest); len(first) > 0 && reMoneyLike.MatchString(first[0]) {
		return "", false
	}

	var b strings.Builder
	for i, tok := range strings.Fields(rest) {
		tok = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToUpper(r)
			}
			return -1
		}, tok)
		if tok == "" {
			break
		}
		if i == 0 || isDigits(tok) || (i == 1 && b.Len() == 2 && isLetters(b.String())) {
			b.WriteString(tok)
			continue
		}
		break
	}

	id := b.String()
	digits := strings.IndexFunc(id, unicode.IsDigit)
	if len(id) < 8 || digits < 0 || countDigits(id) < 6 {
		return "", false
	}
	if len(id) >= 2 && isLetters(id[:2]) {
		if _, ok := e.tables.CountryCode(id[:2]); ok {
			return id, true
		}
	}
	if prefix != "" {
		if _, ok := e.tables.CountryCode(prefix); ok {
			return strings.ToUpper(prefix) + id, true
		}
	}
	return id, true
}

func vatRate(doc *document) (int, bool) {
	for _, re := range []*regexp.Regexp{reVATRateAfter, reVATRateBefore} {
		if m := re.FindStringSubmatch(doc.text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n >= 0 && n < 100 {
				return n, true
			}
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

func isLetters(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return r < 'A' || r > 'Z' }) < 0
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

package extract

import (
	"regexp"
	"strings"

	"smartfill/pkg/models"
)

var (
	reCountryToken = regexp.MustCompile(`\b[A-Z]{2}\b`)
	reSegmentNoise = regexp.MustCompile(`[\d\-./#]+`)
)

// countryInput is the vendor text the cascade reads from.
type countryInput struct {
	vendor  string
	address string
}

func (c countryInput) combined() string {
	if c.address == "" {
		return c.vendor
	}
	return c.vendor + ", " + c.address
}

// detectCountry infers vendorCountry from the vendor name and address. Earlier
// rules win: explicit codes, EU names, global keywords, cities, then the last
// address segment. Cities are only matched in the address so that a vendor
// called "Paris Bakery Ltd" in Berlin is not placed in France.
func (e *Extractor) detectCountry(doc *document, out *models.ExtractedFields) {
	in := countryInput{vendor: models.Value(out.Vendor), address: models.Value(out.VendorAddress)}
	if in.vendor == "" && in.address == "" {
		return
	}

	rules := []func(countryInput) (string, bool){
		e.countryFromCodes,
		func(c countryInput) (string, bool) { return lastKeyword(e.countryNames, c.combined()) },
		func(c countryInput) (string, bool) { return lastKeyword(e.countryWords, c.combined()) },
		func(c countryInput) (string, bool) { return lastKeyword(e.cities, c.address) },
		e.countryFromLastSegment,
	}
	for _, rule := range rules {
		if code, ok := rule(in); ok {
			setOnce(&out.VendorCountry, code)
			return
		}
	}
}

// countryFromCodes takes the last valid uppercase two-letter token of the
// address (or of the vendor name when there is no address).
func (e *Extractor) countryFromCodes(c countryInput) (string, bool) {
	src := c.address
	if src == "" {
		src = c.vendor
	}
	tokens := reCountryToken.FindAllString(src, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		if code, ok := e.tables.CountryCode(tokens[i]); ok {
			return code, true
		}
	}
	return "", false
}

func (e *Extractor) countryFromLastSegment(c countryInput) (string, bool) {
	segments := strings.Split(c.address, ",")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := collapseSpaces(reSegmentNoise.ReplaceAllString(segments[i], " "))
		if seg == "" {
			continue
		}
		return e.tables.Lookup(seg)
	}
	return "", false
}

// lastKeyword returns the code of the matcher whose hit lies closest to the end of s.
func lastKeyword(matchers []keywordMatcher, s string) (string, bool) {
	if s == "" {
		return "", false
	}
	best, bestPos := "", -1
	for _, m := range matchers {
		locs := m.re.FindAllStringIndex(s, -1)
		if len(locs) == 0 {
			continue
		}
		if pos := locs[len(locs)-1][0]; pos > bestPos {
			best, bestPos = m.code, pos
		}
	}
	return best, bestPos >= 0
}

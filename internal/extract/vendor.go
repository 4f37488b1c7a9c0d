package extract

import (
	"regexp"
	"strings"

	"smartfill/pkg/models"
)

const maxAddressLines = 3

var (
	reBillTo        = regexp.MustCompile(`(?i)^(?:bill(?:ed)?\s+to|invoice\s+to|sold\s+to)\b`)
	reBlockBoundary = regexp.MustCompile(`(?i)^(?:(?:tax\s+)?invoice|receipt|factuur|-*\s*page\s+\d+.*)$`)
	reLegalSuffix   = regexp.MustCompile(`(?i)(?:^|[\s,])(?:ltd|limited|inc|llc|llp|plc|gmbh|ag|kg|b\.?\s?v|n\.?\s?v|s\.?\s?a|s\.?\s?r\.?\s?l|s\.?\s?l|sas|sarl|bvba|oy|ab|as|aps|a/s|corp|corporation|co|company|pty)\.?\)?$`)
	reLongDigits    = regexp.MustCompile(`\d{3,}`)
	reTotalWords    = regexp.MustCompile(`(?i)\b(?:sub)?total\b|\bamount\b|\bbalance\b`)
	reContactNoise  = regexp.MustCompile(`(?i)@|\bwww\.|https?://`)

	// Lines that end an address block.
	reAddressNoise = regexp.MustCompile(`(?i)\b(?:receipt|invoice|total|subtotal|bill\s+to|ship\s+to|e-?mail|tax\s+id|vat|btw|kvk|coc|iban|bic|phone|tel|fax|date|due|page|description|qty|amount)\b|@|\bwww\.|https?://`)
)

func (e *Extractor) detectVendor(doc *document, out *models.ExtractedFields) {
	idx, ok := e.vendorFromBillTo(doc)
	if !ok {
		idx, ok = vendorFromLegalSuffix(doc)
	}
	if !ok {
		return
	}
	setOnce(&out.Vendor, doc.collapsed[idx])
	if addr := addressAfter(doc, idx); addr != "" {
		setOnce(&out.VendorAddress, addr)
	}
}

// vendorFromBillTo looks at the block above the first "Bill to" line, where
// the issuer usually prints its own name and address.
func (e *Extractor) vendorFromBillTo(doc *document) (int, bool) {
	anchor := -1
	for i, line := range doc.collapsed {
		if reBillTo.MatchString(line) {
			anchor = i
			break
		}
	}
	if anchor <= 0 {
		return 0, false
	}

	// Bottom to top.
	var block []int
	for i := anchor - 1; i >= 0; i-- {
		line := doc.collapsed[i]
		if reBillTo.MatchString(line) || reBlockBoundary.MatchString(line) {
			break
		}
		if excludedVendorLine(line) {
			continue
		}
		block = append(block, i)
	}
	if len(block) == 0 {
		return 0, false
	}

	for _, i := range block {
		if reLegalSuffix.MatchString(doc.collapsed[i]) {
			return i, true
		}
	}
	for _, i := range block {
		if e.looksLikeName(doc.collapsed[i]) {
			return i, true
		}
	}
	return block[len(block)-1], true
}

// vendorFromLegalSuffix scans the whole document for a company-like line.
func vendorFromLegalSuffix(doc *document) (int, bool) {
	for i, line := range doc.collapsed {
		if reBillTo.MatchString(line) || excludedVendorLine(line) || len(line) > 80 {
			continue
		}
		if reLegalSuffix.MatchString(line) {
			return i, true
		}
	}
	return 0, false
}

func (e *Extractor) looksLikeName(line string) bool {
	if len(strings.Fields(line)) > 5 || reLongDigits.MatchString(line) {
		return false
	}
	_, isPlace := e.tables.Lookup(line)
	return !isPlace
}

// excludedVendorLine reports lines that carry a field other than a name.
func excludedVendorLine(line string) bool {
	switch {
	case reInvoiceNumber.MatchString(line):
		return true
	case len(allDates(line)) > 0:
		return true
	case reTotalWords.MatchString(line):
		return true
	case reContactNoise.MatchString(line):
		return true
	}
	for _, m := range reMoneyToken.FindAllStringSubmatchIndex(line, -1) {
		if m[2] >= 0 || m[6] >= 0 {
			return true
		}
	}
	return false
}

// addressAfter joins up to three short lines following the vendor line.
func addressAfter(doc *document, idx int) string {
	var parts []string
	for i := idx + 1; i < len(doc.collapsed) && len(parts) < maxAddressLines; i++ {
		line := doc.collapsed[i]
		if reAddressNoise.MatchString(line) || reBillTo.MatchString(line) || excludedVendorLine(line) {
			break
		}
		if len(strings.Fields(line)) >= 12 {
			break
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, ", ")
}

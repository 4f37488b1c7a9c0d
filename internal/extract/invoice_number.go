package extract

import (
	"regexp"
	"strings"
	"unicode"

	"smartfill/pkg/models"
)

const invoiceLabel = `invoice\s*(?:number|num\.?|no\.?|nr\.?|#)|factuur\s*(?:nummer|nr\.?)`

var (
	reInvoiceNumber    = regexp.MustCompile(`(?i)\b(?:` + invoiceLabel + `)\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9\-_/]*)`)
	reInvoiceLabelLine = regexp.MustCompile(`(?i)^(?:` + invoiceLabel + `|invoice)\s*[:\-]?\s*(.*)$`)
	reInvoiceToken     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-_/]*$`)
	reSplitToken       = regexp.MustCompile(`^([A-Za-z0-9]+)[\s\-]+([A-Za-z0-9]+)`)

	// Words that follow a bare "Invoice" label but start another field.
	reNotInvoiceNumber = regexp.MustCompile(`(?i)^(?:date|datum|due|to|from|total|amount|period|summary|for)\b`)
)

func (e *Extractor) detectInvoiceNumber(doc *document, out *models.ExtractedFields) {
	v, ok := firstOf(doc, labeledInvoiceNumber, invoiceNumberAfterLabel, splitInvoiceNumber)
	if !ok {
		return
	}
	v = strings.ToUpper(strings.TrimRight(v, "-_/.:"))
	if v != "" {
		setOnce(&out.InvoiceNumber, v)
	}
}

// labeledInvoiceNumber reads "Invoice number: INV-1" style labels.
func labeledInvoiceNumber(doc *document) (string, bool) {
	for _, m := range reInvoiceNumber.FindAllStringSubmatch(doc.text, -1) {
		if hasDigit(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

// invoiceNumberAfterLabel takes the rest of a line that starts with the label
// when it is a single identifier.
func invoiceNumberAfterLabel(doc *document) (string, bool) {
	for _, rest := range invoiceLabelRemainders(doc) {
		if reInvoiceToken.MatchString(rest) && hasDigit(rest) {
			return rest, true
		}
	}
	return "", false
}

// splitInvoiceNumber joins identifiers that OCR split in two, "ABC 12345"
// becoming "ABC-12345".
func splitInvoiceNumber(doc *document) (string, bool) {
	for _, rest := range invoiceLabelRemainders(doc) {
		if reNotInvoiceNumber.MatchString(rest) {
			continue
		}
		m := reSplitToken.FindStringSubmatch(rest)
		if m == nil || !hasDigit(m[2]) {
			continue
		}
		return m[1] + "-" + m[2], true
	}
	return "", false
}

func invoiceLabelRemainders(doc *document) []string {
	var out []string
	for _, line := range doc.collapsed {
		m := reInvoiceLabelLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if rest := strings.TrimSpace(m[1]); rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

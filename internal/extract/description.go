package extract

import (
	"regexp"
	"strings"

	"smartfill/pkg/models"
)

const maxDescriptionLines = 2

var (
	reDescriptionHeader  = regexp.MustCompile(`(?i)^(?:item\s+)?(?:description|omschrijving)\b`)
	reDescriptionStop    = regexp.MustCompile(`(?i)\b(?:qty|quantity|unit\s+price|subtotal|total|vat|btw|amount\s+due|bill\s+to)\b`)
	reDescriptionSection = regexp.MustCompile(`(?is)description(.*?)subtotal`)
)

func (e *Extractor) detectDescription(doc *document, out *models.ExtractedFields) {
	if d, ok := firstOf(doc, descriptionUnderHeader, descriptionBeforeSubtotal); ok {
		setOnce(&out.Description, d)
		return
	}
	if out.Vendor != nil && hasDocumentSignal(out) {
		setOnce(&out.Description, "Invoice from "+*out.Vendor)
	}
}

// descriptionUnderHeader collects the item lines below a "Description" column header.
func descriptionUnderHeader(doc *document) (string, bool) {
	for i, line := range doc.collapsed {
		if !reDescriptionHeader.MatchString(line) {
			continue
		}
		var parts []string
		for _, next := range doc.collapsed[i+1:] {
			if len(parts) == maxDescriptionLines || reDescriptionStop.MatchString(next) {
				break
			}
			parts = append(parts, next)
		}
		if len(parts) > 0 {
			return strings.Join(parts, " "), true
		}
	}
	return "", false
}

// descriptionBeforeSubtotal takes the lines between a "description" mention
// and the subtotal, skipping the rest of the header line itself.
func descriptionBeforeSubtotal(doc *document) (string, bool) {
	m := reDescriptionSection.FindStringSubmatch(doc.text)
	if m == nil {
		return "", false
	}
	section := m[1]
	if nl := strings.IndexByte(section, '\n'); nl >= 0 {
		section = section[nl+1:]
	} else {
		section = ""
	}

	var parts []string
	for _, line := range strings.Split(section, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		parts = append(parts, line)
		if len(parts) == maxDescriptionLines {
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// hasDocumentSignal reports whether the text looked like a billing document
// at all, so that fallbacks are not applied to arbitrary text.
func hasDocumentSignal(f *models.ExtractedFields) bool {
	return f.DocumentType != nil || f.InvoiceNumber != nil || f.Amount != nil
}

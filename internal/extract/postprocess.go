package extract

import (
	"strings"

	"smartfill/pkg/models"
)

func (e *Extractor) postProcess(doc *document, out *models.ExtractedFields) {
	if out.Vendor != nil {
		v := collapseSpaces(*out.Vendor)
		out.Vendor = nonEmpty(v)
	}
	if out.VendorAddress != nil {
		out.VendorAddress = nonEmpty(dedupeSegments(*out.VendorAddress))
	}
	if out.Description != nil {
		out.Description = nonEmpty(collapseSpaces(*out.Description))
	}
	if out.Amount != nil {
		setOnce(&out.PaymentStatus, models.PaymentStatusOpen)
	}
}

// dedupeSegments drops repeated comma-separated segments, ignoring case.
func dedupeSegments(addr string) string {
	seen := make(map[string]bool)
	var parts []string
	for _, seg := range strings.Split(addr, ",") {
		seg = collapseSpaces(seg)
		key := strings.ToLower(seg)
		if seg == "" || seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, seg)
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

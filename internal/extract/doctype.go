package extract

import (
	"strings"

	"smartfill/pkg/models"
)

// documentKeywords is checked in order; the first keyword present decides.
var documentKeywords = []struct {
	keyword string
	typ     models.DocumentType
}{
	{"invoice", models.DocumentInvoice},
	{"receipt", models.DocumentReceipt},
	{"statement", models.DocumentStatement},
	{"bill", models.DocumentInvoice},
	{"factuur", models.DocumentInvoice},
}

func (e *Extractor) detectDocumentType(doc *document, out *models.ExtractedFields) {
	for _, k := range documentKeywords {
		if strings.Contains(doc.lower, k.keyword) {
			setOnce(&out.DocumentType, k.typ)
			return
		}
	}
}

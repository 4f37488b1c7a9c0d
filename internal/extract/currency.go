package extract

import (
	"strings"

	"smartfill/pkg/models"
)

// detectCurrency picks the first table currency with a symbol or word in the text.
func (e *Extractor) detectCurrency(doc *document, out *models.ExtractedFields) {
	for _, c := range e.currencies {
		if currencyPresent(c, doc.text) {
			setOnce(&out.Currency, c.code)
			return
		}
	}
}

func currencyPresent(c currencyMatcher, text string) bool {
	for _, sym := range c.symbols {
		if sym != "" && strings.Contains(text, sym) {
			return true
		}
	}
	return c.words != nil && c.words.MatchString(text)
}

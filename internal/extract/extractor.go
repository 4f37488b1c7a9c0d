// Package extract infers structured expense fields from raw OCR or PDF text.
//
// Extraction is a fixed sequence of stages (document type, invoice number,
// dates, amount, currency, vendor and address, country, VAT, description,
// post-processing). Each stage fills zero or more fields and never overwrites
// a field an earlier stage already set. A field with no usable signal stays
// nil; extraction itself never fails.
//
// An Extractor holds only immutable tables and compiled patterns, so one
// instance can serve concurrent callers.
package extract

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"smartfill/internal/locale"
	"smartfill/pkg/models"
)

// Extractor runs the extraction pipeline.
type Extractor struct {
	tables *locale.Tables
	log    zerolog.Logger

	currencies   []currencyMatcher
	countryNames []keywordMatcher
	countryWords []keywordMatcher
	cities       []keywordMatcher
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTables replaces the embedded locale tables.
func WithTables(t *locale.Tables) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tables = t
		}
	}
}

// WithLogger attaches a logger used for debug tracing of stage results.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.log = l
	}
}

// New builds an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		tables: locale.Default(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.compileTables()
	return e
}

type stage struct {
	name string
	run  func(e *Extractor, doc *document, out *models.ExtractedFields)
}

// Stage order is significant; see the package documentation.
var pipeline = []stage{
	{"document_type", (*Extractor).detectDocumentType},
	{"invoice_number", (*Extractor).detectInvoiceNumber},
	{"dates", (*Extractor).detectDates},
	{"amount", (*Extractor).detectAmount},
	{"currency", (*Extractor).detectCurrency},
	{"vendor", (*Extractor).detectVendor},
	{"country", (*Extractor).detectCountry},
	{"vat", (*Extractor).detectVAT},
	{"description", (*Extractor).detectDescription},
	{"post_process", (*Extractor).postProcess},
}

// Extract returns the fields inferred from text. Empty or unreadable text
// yields an empty result.
func (e *Extractor) Extract(text string) models.ExtractedFields {
	var out models.ExtractedFields

	doc := newDocument(text)
	if len(doc.collapsed) == 0 {
		return out
	}

	for _, s := range pipeline {
		e.runStage(s, doc, &out)
	}
	return out
}

func (e *Extractor) runStage(s stage, doc *document, out *models.ExtractedFields) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().
				Str("stage", s.name).
				Str("panic", fmt.Sprint(r)).
				Msg("Extraction stage aborted, skipping")
		}
	}()
	s.run(e, doc, out)
	e.log.Debug().Str("stage", s.name).Interface("fields", out).Msg("Stage completed")
}

// setOnce stores v in *dst unless an earlier stage already set it.
func setOnce[T any](dst **T, v T) bool {
	if *dst != nil {
		return false
	}
	*dst = &v
	return true
}

type keywordMatcher struct {
	re   *regexp.Regexp
	code string
}

type currencyMatcher struct {
	code    string
	symbols []string
	words   *regexp.Regexp
}

func (e *Extractor) compileTables() {
	for _, c := range e.tables.Currencies {
		m := currencyMatcher{code: c.Code, symbols: c.Symbols}
		if len(c.Words) > 0 {
			m.words = wordPattern(c.Words...)
		}
		e.currencies = append(e.currencies, m)
	}
	for _, k := range e.tables.CountryNames() {
		e.countryNames = append(e.countryNames, keywordMatcher{re: wordPattern(k.Keyword), code: k.Code})
	}
	for _, k := range e.tables.CountryKeywords {
		e.countryWords = append(e.countryWords, keywordMatcher{re: wordPattern(k.Keyword), code: k.Code})
	}
	for _, c := range e.tables.Cities {
		e.cities = append(e.cities, keywordMatcher{re: wordPattern(c.City), code: c.Code})
	}
}

// wordPattern matches any of words as a whole word, case-insensitively.
// Boundaries are Unicode letters and digits, so "zł" or "köln" work where \b would not.
func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	alt := quoted[0]
	for _, q := range quoted[1:] {
		alt += "|" + q
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + alt + `)(?:$|[^\p{L}\p{N}])`)
}

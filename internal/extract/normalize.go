package extract

import (
	"regexp"
	"strings"
)

var (
	reCRLF      = regexp.MustCompile(`\r\n?`)
	reHSpace    = regexp.MustCompile(`[ \t\f\v\x{00A0}]{2,}`)
	reTabs      = regexp.MustCompile(`[\t\f\v\x{00A0}]`)
	reAllSpaces = regexp.MustCompile(`\s+`)
)

// document is the normalized view of raw text shared by all stages.
type document struct {
	lines     []string // trimmed, blank lines kept
	collapsed []string // non-blank lines with inner whitespace collapsed
	text      string   // collapsed lines joined by "\n"
	lower     string   // strings.ToLower(text)
	offsets   []int    // byte offset of each collapsed line in text
}

func newDocument(raw string) *document {
	raw = reCRLF.ReplaceAllString(raw, "\n")

	doc := &document{}
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		doc.lines = append(doc.lines, line)
		if line == "" {
			continue
		}
		line = reTabs.ReplaceAllString(reHSpace.ReplaceAllString(line, " "), " ")
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		doc.offsets = append(doc.offsets, b.Len())
		doc.collapsed = append(doc.collapsed, line)
		b.WriteString(line)
	}
	doc.text = b.String()
	doc.lower = strings.ToLower(doc.text)
	return doc
}

// collapseSpaces trims s and squeezes every whitespace run to a single space.
func collapseSpaces(s string) string {
	return strings.TrimSpace(reAllSpaces.ReplaceAllString(s, " "))
}

// strategy is one way of reading a value out of a document.
type strategy[T any] func(doc *document) (T, bool)

// firstOf evaluates strategies in order and returns the first hit.
func firstOf[T any](doc *document, strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

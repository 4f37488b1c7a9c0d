package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"smartfill/pkg/models"
)

const moneyNumber = `\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`

// amountLabel names the amount that follows it on the same line, or the one
// directly before it when before is set.
type amountLabel struct {
	re     *regexp.Regexp
	score  int
	paid   bool
	before bool
}

// Higher scores win; equal scores go to the later occurrence.
var amountLabels = []amountLabel{
	{re: regexp.MustCompile(`(?i)\bamount\s+(?:paid|received)\b`), score: 12, paid: true},
	{re: regexp.MustCompile(`(?i)([€$£]\s?)?(` + moneyNumber + `)\s*([a-z]{3}\s+)?paid\s+on\b`), score: 10, paid: true, before: true},
	{re: regexp.MustCompile(`(?i)\bamount\s+due\b`), score: 9},
	{re: regexp.MustCompile(`(?i)\b(?:grand\s+)?total\b`), score: 8},
	{re: regexp.MustCompile(`(?i)\bbalance\s+due\b`), score: 7},
}

// contextWeights score every money token on a line by the keywords present.
var contextWeights = []struct {
	re    *regexp.Regexp
	score int
}{
	{regexp.MustCompile(`(?i)\bamount\s+(?:paid|received)\b`), 6},
	{regexp.MustCompile(`(?i)\bamount\s+due\b`), 5},
	{regexp.MustCompile(`(?i)\b(?:grand\s+)?total\b`), 4},
	{regexp.MustCompile(`(?i)\bpayment\b`), 2},
	{regexp.MustCompile(`(?i)\bsubtotal\b`), 1},
	{regexp.MustCompile(`(?i)\b(?:vat|tax|btw)\b`), -3},
}

var (
	reMoneyToken  = regexp.MustCompile(`(?i)([€$£]\s?)?(` + moneyNumber + `)(\s?(?:eur|usd|gbp|chf)\b)?`)
	reStrictMoney = regexp.MustCompile(`\b\d+(?:[.,]\d{3})*[.,]\d{2}\b`)
	reTwoDecimals = regexp.MustCompile(`[.,]\d{2}$`)
)

type amountCandidate struct {
	value decimal.Decimal
	score int
	pos   int
	paid  bool
}

func (e *Extractor) detectAmount(doc *document, out *models.ExtractedFields) {
	text := blankDates(doc.text)

	best, ok := bestCandidate(append(labeledAmounts(text), contextualAmounts(doc, text)...))
	if !ok {
		best, ok = lastStrictAmount(text)
	}
	if !ok {
		return
	}
	if setOnce(&out.Amount, best.value.StringFixed(2)) && best.paid {
		setOnce(&out.PaymentStatus, models.PaymentStatusPaid)
	}
}

func labeledAmounts(text string) []amountCandidate {
	var out []amountCandidate
	for _, l := range amountLabels {
		for _, m := range l.re.FindAllStringSubmatchIndex(text, -1) {
			var raw string
			var pos int
			if l.before {
				raw, pos = text[m[4]:m[5]], m[4]
				marked := m[2] >= 0 || m[6] >= 0
				if !marked && !reTwoDecimals.MatchString(raw) {
					continue
				}
			} else {
				var ok bool
				if raw, pos, ok = moneyAfter(text, m[1]); !ok {
					continue
				}
			}
			v, ok := parseAmount(raw)
			if !ok {
				continue
			}
			out = append(out, amountCandidate{value: v, score: l.score, pos: pos, paid: l.paid})
		}
	}
	return out
}

// moneyAfter returns the first money token between from and the end of the
// line. Bare integers such as item counts are skipped. A percentage ends the
// search since the line then names a rate.
func moneyAfter(text string, from int) (string, int, bool) {
	end := strings.IndexByte(text[from:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += from
	}
	line := text[from:end]
	for _, m := range reMoneyToken.FindAllStringSubmatchIndex(line, -1) {
		if followedByPercent(line, m[5]) {
			return "", 0, false
		}
		raw := line[m[4]:m[5]]
		marked := m[2] >= 0 || m[6] >= 0
		if !marked && !reTwoDecimals.MatchString(raw) {
			continue
		}
		return raw, from + m[4], true
	}
	return "", 0, false
}

func contextualAmounts(doc *document, text string) []amountCandidate {
	var out []amountCandidate
	for i, line := range strings.Split(text, "\n") {
		score, hit := 0, false
		for _, w := range contextWeights {
			if w.re.MatchString(line) {
				score += w.score
				hit = true
			}
		}
		if !hit {
			continue
		}
		for _, m := range reMoneyToken.FindAllStringSubmatchIndex(line, -1) {
			raw := line[m[4]:m[5]]
			marked := m[2] >= 0 || m[6] >= 0
			if !marked && !reTwoDecimals.MatchString(raw) {
				continue
			}
			if followedByPercent(line, m[5]) {
				continue
			}
			v, ok := parseAmount(raw)
			if !ok {
				continue
			}
			out = append(out, amountCandidate{value: v, score: score, pos: doc.offsets[i] + m[4]})
		}
	}
	return out
}

func lastStrictAmount(text string) (amountCandidate, bool) {
	var last amountCandidate
	found := false
	for _, m := range reStrictMoney.FindAllStringIndex(text, -1) {
		if followedByPercent(text, m[1]) {
			continue
		}
		if v, ok := parseAmount(text[m[0]:m[1]]); ok {
			last, found = amountCandidate{value: v, pos: m[0]}, true
		}
	}
	return last, found
}

func bestCandidate(cs []amountCandidate) (amountCandidate, bool) {
	if len(cs) == 0 {
		return amountCandidate{}, false
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if c.score > best.score || (c.score == best.score && c.pos > best.pos) {
			best = c
		}
	}
	return best, true
}

// parseAmount reads a money string with either decimal convention.
//
// With both separators present the rightmost one is the decimal point. A lone
// comma is a decimal comma. A lone dot followed by exactly three digits is a
// thousands separator, as in "€ 1.250". Repeated identical separators are
// thousands separators.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-dot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Abs(), true
}

func followedByPercent(s string, end int) bool {
	rest := strings.TrimLeft(s[end:], " ")
	return strings.HasPrefix(rest, "%")
}

// blankDates replaces every date with spaces so day and year digits are not
// read as money. Byte offsets are preserved.
func blankDates(text string) string {
	spans := dateSpans(text)
	if len(spans) == 0 {
		return text
	}
	b := []byte(text)
	for _, sp := range spans {
		for i := sp[0]; i < sp[1]; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

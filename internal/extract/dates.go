package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"smartfill/pkg/models"
)

const monthName = `(jan(?:uary|uari)?|feb(?:ruary|ruari)?|mar(?:ch)?|maart|apr(?:il)?|may|mei|jun(?:e|i)?|jul(?:y|i)?|aug(?:ust(?:us)?)?|sep(?:t(?:ember)?)?|oct(?:ober)?|okt(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	reNumericDate = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`)
	reISODate     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reMonthFirst  = regexp.MustCompile(`(?i)\b` + monthName + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	reDayFirst    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\.?\s+` + monthName + `\.?,?\s+(\d{4})\b`)

	reIssueDateLabel = regexp.MustCompile(`(?i)\b(?:date\s+of\s+issue|issue\s+date|invoice\s+date|factuurdatum)\b`)
	reDueDateLabel   = regexp.MustCompile(`(?i)\b(?:date\s+due|due\s+date|payment\s+due|vervaldatum)\b`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "maa": 3, "apr": 4, "may": 5, "mei": 5,
	"jun": 6, "jul": 7, "aug": 8, "sep": 9, "oct": 10, "okt": 10, "nov": 11, "dec": 12,
}

type foundDate struct {
	iso       string
	start     int
	end       int
	ambiguous bool
}

func (e *Extractor) detectDates(doc *document, out *models.ExtractedFields) {
	candidates := dedupeDates(allDates(doc.text))

	var issue, due *foundDate
	if len(candidates) > 0 {
		issue = &candidates[0]
	}
	if len(candidates) > 1 {
		due = &candidates[1]
	}
	if d, ok := labeledDate(doc, reIssueDateLabel); ok {
		issue = &d
	}
	if d, ok := labeledDate(doc, reDueDateLabel); ok {
		due = &d
	}
	if due != nil && issue != nil && due.iso == issue.iso {
		due = nil
	}

	if issue != nil {
		setOnce(&out.InvoiceDate, issue.iso)
		setOnce(&out.Date, issue.iso)
		out.DateAmbiguous = out.DateAmbiguous || issue.ambiguous
	}
	if due != nil {
		setOnce(&out.DueDate, due.iso)
		out.DateAmbiguous = out.DateAmbiguous || due.ambiguous
	}
}

// labeledDate returns the first date on the labeled line, or on the line
// after it when the label stands alone.
func labeledDate(doc *document, label *regexp.Regexp) (foundDate, bool) {
	for i, line := range doc.collapsed {
		if !label.MatchString(line) {
			continue
		}
		if d := allDates(line); len(d) > 0 {
			return d[0], true
		}
		if i+1 < len(doc.collapsed) {
			if d := allDates(doc.collapsed[i+1]); len(d) > 0 {
				return d[0], true
			}
		}
	}
	return foundDate{}, false
}

// allDates returns every date in s in position order.
func allDates(s string) []foundDate {
	all := append(numericDates(s), longDates(s)...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].start < all[j].start })
	return all
}

func numericDates(s string) []foundDate {
	var out []foundDate
	for _, m := range reISODate.FindAllStringSubmatchIndex(s, -1) {
		y, mo, d := atoi(s[m[2]:m[3]]), atoi(s[m[4]:m[5]]), atoi(s[m[6]:m[7]])
		if iso, ok := isoDate(y, mo, d); ok {
			out = append(out, foundDate{iso: iso, start: m[0], end: m[1]})
		}
	}
	for _, m := range reNumericDate.FindAllStringSubmatchIndex(s, -1) {
		if overlaps(out, m[0], m[1]) {
			continue
		}
		a, b := atoi(s[m[2]:m[3]]), atoi(s[m[4]:m[5]])
		y := expandYear(s[m[6]:m[7]])
		day, month, ambiguous := resolveDayMonth(a, b)
		if iso, ok := isoDate(y, month, day); ok {
			out = append(out, foundDate{iso: iso, start: m[0], end: m[1], ambiguous: ambiguous})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func longDates(s string) []foundDate {
	var out []foundDate
	for _, m := range reMonthFirst.FindAllStringSubmatchIndex(s, -1) {
		month := monthNumbers[strings.ToLower(s[m[2] : m[2]+3])]
		if iso, ok := isoDate(atoi(s[m[6]:m[7]]), month, atoi(s[m[4]:m[5]])); ok {
			out = append(out, foundDate{iso: iso, start: m[0], end: m[1]})
		}
	}
	for _, m := range reDayFirst.FindAllStringSubmatchIndex(s, -1) {
		if overlaps(out, m[0], m[1]) {
			continue
		}
		month := monthNumbers[strings.ToLower(s[m[4] : m[4]+3])]
		if iso, ok := isoDate(atoi(s[m[6]:m[7]]), month, atoi(s[m[2]:m[3]])); ok {
			out = append(out, foundDate{iso: iso, start: m[0], end: m[1]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// resolveDayMonth orders the first two components of a numeric date. A
// component above 12 must be the day; otherwise day-first is assumed and the
// result is flagged ambiguous when swapping would give another date.
func resolveDayMonth(a, b int) (day, month int, ambiguous bool) {
	switch {
	case a > 12:
		return a, b, false
	case b > 12:
		return b, a, false
	default:
		return a, b, a != b
	}
}

func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

func isoDate(y, m, d int) (string, bool) {
	if y < 1900 || y > 2100 || m < 1 || m > 12 || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

func dedupeDates(in []foundDate) []foundDate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, d := range in {
		if seen[d.iso] {
			continue
		}
		seen[d.iso] = true
		out = append(out, d)
	}
	return out
}

func overlaps(found []foundDate, start, end int) bool {
	for _, f := range found {
		if start < f.end && f.start < end {
			return true
		}
	}
	return false
}

// dateSpans returns the byte ranges of every date in s.
func dateSpans(s string) [][2]int {
	var spans [][2]int
	for _, d := range allDates(s) {
		spans = append(spans, [2]int{d.start, d.end})
	}
	return spans
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

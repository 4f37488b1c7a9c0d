package vendors

import (
	"strings"

	"smartfill/pkg/models"
)

// Details are the vendor signals read from one document.
type Details struct {
	Name          string
	InvoiceNumber string
	Country       string
	Currency      string
	Address       string
}

// Match is a profile chosen for a document.
type Match struct {
	Profile         *models.VendorProfile `json:"profile"`
	Score           int                   `json:"score"`
	ByInvoiceNumber bool                  `json:"byInvoiceNumber"`
}

// Weights is the scoring policy used by FindMatch. Candidates are first
// gathered with the base scores, then scored with the composite terms.
type Weights struct {
	BaseExactName     int
	BaseSharedToken   int
	BaseInvoiceNumber int
	BaseOnlyProfile   int

	ExactName         int
	ContainedName     int
	SharedToken       int
	SharedTokenBonus  int
	InvoiceNumber     int
	Country           int
	PreferredCurrency int
	OtherCurrency     int
	Address           int
	MaxUsage          int

	ThresholdWithInvoice    int
	ThresholdWithoutInvoice int
}

// DefaultWeights is the policy FindMatch uses.
var DefaultWeights = Weights{
	BaseExactName:     60,
	BaseSharedToken:   20,
	BaseInvoiceNumber: 40,
	BaseOnlyProfile:   30,

	ExactName:         70,
	ContainedName:     45,
	SharedToken:       12,
	SharedTokenBonus:  20,
	InvoiceNumber:     80,
	Country:           12,
	PreferredCurrency: 10,
	OtherCurrency:     6,
	Address:           10,
	MaxUsage:          10,

	ThresholdWithInvoice:    50,
	ThresholdWithoutInvoice: 60,
}

// FindMatch returns the profile that best matches details, or nil when no
// candidate reaches the threshold. idx must have been built from profiles.
func FindMatch(details Details, idx *Index, profiles []models.VendorProfile) *Match {
	return DefaultWeights.FindMatch(details, idx, profiles)
}

type signals struct {
	name     string
	tokens   []string
	invoice  string
	country  string
	currency string
	address  []string
}

func newSignals(d Details) signals {
	return signals{
		name:     NormalizeName(d.Name),
		tokens:   NameTokens(d.Name),
		invoice:  NormalizeInvoiceNumber(d.InvoiceNumber),
		country:  strings.ToUpper(strings.TrimSpace(d.Country)),
		currency: strings.ToUpper(strings.TrimSpace(d.Currency)),
		address:  addressTokens(d.Address),
	}
}

// FindMatch is FindMatch with a custom policy.
func (w Weights) FindMatch(details Details, idx *Index, profiles []models.VendorProfile) *Match {
	if idx == nil || len(profiles) == 0 {
		return nil
	}
	s := newSignals(details)

	if s.invoice != "" {
		if i, ok := idx.byInvoice[s.invoice]; ok && i < len(profiles) {
			return &Match{Profile: &profiles[i], Score: w.score(s, &profiles[i]), ByInvoiceNumber: true}
		}
	}

	base := make(map[int]int)
	if s.name != "" {
		if i, ok := idx.byName[s.name]; ok {
			base[i] += w.BaseExactName
		}
	}
	for _, tok := range s.tokens {
		for _, i := range idx.byToken[tok] {
			base[i] += w.BaseSharedToken
		}
	}
	if s.invoice != "" {
		for i := range profiles {
			if hasInvoice(&profiles[i], s.invoice) {
				base[i] += w.BaseInvoiceNumber
			}
		}
	}
	if len(base) == 0 && len(profiles) == 1 && s.name == "" {
		base[0] = w.BaseOnlyProfile
	}

	best, bestScore := -1, 0
	for i := range profiles {
		b, ok := base[i]
		if !ok {
			continue
		}
		total := b + w.score(s, &profiles[i])
		if best < 0 || total > bestScore {
			best, bestScore = i, total
		}
	}
	if best < 0 {
		return nil
	}

	threshold := w.ThresholdWithoutInvoice
	if s.invoice != "" {
		threshold = w.ThresholdWithInvoice
	}
	if bestScore < threshold {
		return nil
	}
	return &Match{Profile: &profiles[best], Score: bestScore}
}

// score is the composite similarity between a document and one profile.
func (w Weights) score(s signals, p *models.VendorProfile) int {
	total := 0

	if s.name != "" {
		names := profileNames(p)
		switch {
		case containsString(names, s.name):
			total += w.ExactName
		case containedEitherWay(names, s.name):
			total += w.ContainedName
		}
	}

	ptoks := profileTokens(p)
	shared := countShared(s.tokens, ptoks)
	total += w.SharedToken * shared
	if shared > 0 && shared >= min(2, len(ptoks)) {
		total += w.SharedTokenBonus
	}

	if s.invoice != "" && hasInvoice(p, s.invoice) {
		total += w.InvoiceNumber
	}
	if s.country != "" && (strings.EqualFold(p.Country, s.country) || containsFold(p.Countries, s.country)) {
		total += w.Country
	}
	if s.currency != "" {
		switch {
		case strings.EqualFold(p.PreferredCurrency, s.currency):
			total += w.PreferredCurrency
		case containsFold(p.Currencies, s.currency):
			total += w.OtherCurrency
		}
	}
	if len(s.address) > 0 {
		var known []string
		for _, a := range append([]string{p.PrimaryAddress}, p.Addresses...) {
			known = append(known, addressTokens(a)...)
		}
		if countShared(s.address, known) >= 2 {
			total += w.Address
		}
	}
	if p.UsageCount > 0 {
		total += min(w.MaxUsage, p.UsageCount)
	}
	return total
}

func hasInvoice(p *models.VendorProfile, normalized string) bool {
	for _, inv := range profileInvoices(p) {
		if inv == normalized {
			return true
		}
	}
	return false
}

func countShared(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	n := 0
	for _, t := range a {
		if set[t] {
			n++
			delete(set, t)
		}
	}
	return n
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containedEitherWay(names []string, s string) bool {
	for _, n := range names {
		if n != "" && (strings.Contains(n, s) || strings.Contains(s, n)) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

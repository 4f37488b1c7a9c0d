// Package vendors keeps the directory of known suppliers and matches
// extracted document details against it.
package vendors

import (
	"strings"

	"smartfill/pkg/models"
)

// Index is a lookup structure over a profile slice. Values are positions in
// the slice the index was built from; when two profiles share a key the one
// registered first keeps it.
type Index struct {
	byName    map[string]int
	byInvoice map[string]int
	byToken   map[string][]int
}

// BuildIndex indexes profiles by normalized name (including former names),
// by normalized invoice number and by name token.
func BuildIndex(profiles []models.VendorProfile) *Index {
	idx := &Index{
		byName:    make(map[string]int),
		byInvoice: make(map[string]int),
		byToken:   make(map[string][]int),
	}
	for i := range profiles {
		p := &profiles[i]

		for _, name := range profileNames(p) {
			if _, ok := idx.byName[name]; !ok && name != "" {
				idx.byName[name] = i
			}
		}
		for _, tok := range profileTokens(p) {
			idx.byToken[tok] = append(idx.byToken[tok], i)
		}
		for _, inv := range profileInvoices(p) {
			if _, ok := idx.byInvoice[inv]; !ok {
				idx.byInvoice[inv] = i
			}
		}
	}
	return idx
}

// ByName returns the position of the profile with the given name.
func (idx *Index) ByName(name string) (int, bool) {
	i, ok := idx.byName[NormalizeName(name)]
	return i, ok
}

// ByInvoiceNumber returns the position of the profile that issued invoice.
func (idx *Index) ByInvoiceNumber(invoice string) (int, bool) {
	i, ok := idx.byInvoice[NormalizeInvoiceNumber(invoice)]
	return i, ok
}

// ByToken returns the positions of profiles whose name contains token.
func (idx *Index) ByToken(token string) []int {
	return idx.byToken[strings.ToLower(token)]
}

func profileNames(p *models.VendorProfile) []string {
	names := []string{p.NormalizedName, NormalizeName(p.Name)}
	for _, h := range p.NameHistory {
		names = append(names, NormalizeName(h))
	}
	return names
}

func profileTokens(p *models.VendorProfile) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(toks []string) {
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	add(NameTokens(p.Name))
	for _, h := range p.NameHistory {
		add(NameTokens(h))
	}
	for _, t := range p.SearchTokens {
		add(significant([]string{fold(strings.TrimSpace(t))}))
	}
	return out
}

func profileInvoices(p *models.VendorProfile) []string {
	var out []string
	for _, inv := range append(append([]string{}, p.InvoiceNumbers...), p.LastInvoiceNumber) {
		if n := NormalizeInvoiceNumber(inv); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Directory is a profile snapshot together with its index.
type Directory struct {
	Profiles []models.VendorProfile
	Index    *Index
}

// NewDirectory copies profiles and indexes them.
func NewDirectory(profiles []models.VendorProfile) *Directory {
	ps := append([]models.VendorProfile(nil), profiles...)
	return &Directory{Profiles: ps, Index: BuildIndex(ps)}
}

// Match finds the best profile for details using the default weights.
func (d *Directory) Match(details Details) *Match {
	if d == nil {
		return nil
	}
	return FindMatch(details, d.Index, d.Profiles)
}

// Find returns the profile with the given ID.
func (d *Directory) Find(id string) (*models.VendorProfile, bool) {
	for i := range d.Profiles {
		if d.Profiles[i].ID == id {
			return &d.Profiles[i], true
		}
	}
	return nil, false
}

package vendors

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"smartfill/pkg/models"
)

// Update is the change recommended for a profile after a confirmed expense.
// Empty fields mean "no change".
type Update struct {
	ProfileID               string `json:"profileId"`
	Name                    string `json:"name,omitempty"`
	InvoiceNumber           string `json:"invoiceNumber,omitempty"`
	Country                 string `json:"country,omitempty"`
	Currency                string `json:"currency,omitempty"`
	Address                 string `json:"address,omitempty"`
	VATNumber               string `json:"vatNumber,omitempty"`
	ChamberOfCommerceNumber string `json:"chamberOfCommerceNumber,omitempty"`
	PaymentMethod           string `json:"paymentMethod,omitempty"`
}

// SuggestUpdate compares a confirmed form with the profile it matched and
// returns what should be recorded. Usage always increments when applied.
func SuggestUpdate(p models.VendorProfile, form models.FormState) Update {
	u := Update{ProfileID: p.ID}

	if name := strings.TrimSpace(form.Vendor); name != "" && NormalizeName(name) != NormalizeName(p.Name) &&
		!containsString(normalizedAll(p.NameHistory), NormalizeName(name)) {
		u.Name = name
	}
	if inv := strings.TrimSpace(form.InvoiceNumber); inv != "" && !hasInvoice(&p, NormalizeInvoiceNumber(inv)) {
		u.InvoiceNumber = inv
	}
	if c := strings.ToUpper(strings.TrimSpace(form.VendorCountry)); c != "" && !strings.EqualFold(c, p.Country) && !containsFold(p.Countries, c) {
		u.Country = c
	}
	if c := strings.ToUpper(strings.TrimSpace(form.Currency)); c != "" && !strings.EqualFold(c, p.PreferredCurrency) && !containsFold(p.Currencies, c) {
		u.Currency = c
	}
	if a := strings.TrimSpace(form.VendorAddress); a != "" && !strings.EqualFold(a, p.PrimaryAddress) && !containsFold(p.Addresses, a) {
		u.Address = a
	}
	if v := strings.TrimSpace(form.VATNumber); v != "" && p.PrimaryVATNumber == "" {
		u.VATNumber = v
	}
	if v := strings.TrimSpace(form.ChamberOfCommerceNumber); v != "" && p.PrimaryChamberOfCommerceNumber == "" {
		u.ChamberOfCommerceNumber = v
	}
	if v := strings.TrimSpace(form.PaymentMethod); v != "" && p.DefaultPaymentMethod == "" {
		u.PaymentMethod = v
	}
	return u
}

// ApplyUpdate returns p with u recorded. The input profile is not modified.
// A new name is kept in the history and the canonical name is unchanged.
func ApplyUpdate(p models.VendorProfile, u Update, now time.Time) models.VendorProfile {
	out := cloneProfile(p)
	out.UsageCount++
	out.UpdatedAt = now

	if u.Name != "" {
		out.NameHistory = append(out.NameHistory, u.Name)
		out.SearchTokens = mergeTokens(out.SearchTokens, NameTokens(u.Name))
	}
	if u.InvoiceNumber != "" {
		out.InvoiceNumbers = append(out.InvoiceNumbers, u.InvoiceNumber)
		out.LastInvoiceNumber = u.InvoiceNumber
	}
	if u.Country != "" {
		if out.Country == "" {
			out.Country = u.Country
		}
		out.Countries = appendMissing(out.Countries, u.Country)
	}
	if u.Currency != "" {
		if out.PreferredCurrency == "" {
			out.PreferredCurrency = u.Currency
		}
		out.Currencies = appendMissing(out.Currencies, u.Currency)
	}
	if u.Address != "" {
		if out.PrimaryAddress == "" {
			out.PrimaryAddress = u.Address
		}
		out.Addresses = appendMissing(out.Addresses, u.Address)
	}
	if u.VATNumber != "" {
		out.PrimaryVATNumber = u.VATNumber
	}
	if u.ChamberOfCommerceNumber != "" {
		out.PrimaryChamberOfCommerceNumber = u.ChamberOfCommerceNumber
	}
	if u.PaymentMethod != "" {
		out.DefaultPaymentMethod = u.PaymentMethod
	}
	return out
}

// NewProfile creates a profile from a confirmed form that matched nothing.
func NewProfile(form models.FormState, now time.Time) models.VendorProfile {
	name := strings.TrimSpace(form.Vendor)
	p := models.VendorProfile{
		ID:                             uuid.NewString(),
		Name:                           name,
		NormalizedName:                 NormalizeName(name),
		SearchTokens:                   NameTokens(name),
		Country:                        strings.ToUpper(strings.TrimSpace(form.VendorCountry)),
		PreferredCurrency:              strings.ToUpper(strings.TrimSpace(form.Currency)),
		PrimaryAddress:                 strings.TrimSpace(form.VendorAddress),
		PrimaryVATNumber:               strings.TrimSpace(form.VATNumber),
		PrimaryChamberOfCommerceNumber: strings.TrimSpace(form.ChamberOfCommerceNumber),
		DefaultPaymentMethod:           strings.TrimSpace(form.PaymentMethod),
		UsageCount:                     1,
		CreatedAt:                      now,
		UpdatedAt:                      now,
	}
	if p.Country != "" {
		p.Countries = []string{p.Country}
	}
	if p.PreferredCurrency != "" {
		p.Currencies = []string{p.PreferredCurrency}
	}
	if p.PrimaryAddress != "" {
		p.Addresses = []string{p.PrimaryAddress}
	}
	if inv := strings.TrimSpace(form.InvoiceNumber); inv != "" {
		p.InvoiceNumbers = []string{inv}
		p.LastInvoiceNumber = inv
	}
	return p
}

// Learn records a confirmed form in profiles. It updates the matched profile
// or appends a new one and returns the new slice with the affected profile.
func Learn(profiles []models.VendorProfile, form models.FormState, now time.Time) ([]models.VendorProfile, models.VendorProfile) {
	out := append([]models.VendorProfile(nil), profiles...)
	m := NewDirectory(out).Match(Details{
		Name:          form.Vendor,
		InvoiceNumber: form.InvoiceNumber,
		Country:       form.VendorCountry,
		Currency:      form.Currency,
		Address:       form.VendorAddress,
	})
	if m == nil {
		p := NewProfile(form, now)
		return append(out, p), p
	}
	for i := range out {
		if out[i].ID == m.Profile.ID {
			out[i] = ApplyUpdate(out[i], SuggestUpdate(out[i], form), now)
			return out, out[i]
		}
	}
	p := NewProfile(form, now)
	return append(out, p), p
}

func cloneProfile(p models.VendorProfile) models.VendorProfile {
	out := p
	out.NameHistory = append([]string(nil), p.NameHistory...)
	out.SearchTokens = append([]string(nil), p.SearchTokens...)
	out.InvoiceNumbers = append([]string(nil), p.InvoiceNumbers...)
	out.Countries = append([]string(nil), p.Countries...)
	out.Currencies = append([]string(nil), p.Currencies...)
	out.Addresses = append([]string(nil), p.Addresses...)
	return out
}

func appendMissing(list []string, v string) []string {
	if containsFold(list, v) {
		return list
	}
	return append(list, v)
}

func mergeTokens(list, add []string) []string {
	for _, t := range add {
		if !containsString(list, t) {
			list = append(list, t)
		}
	}
	return list
}

func normalizedAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, NormalizeName(n))
	}
	return out
}

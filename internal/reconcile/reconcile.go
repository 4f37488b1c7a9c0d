// Package reconcile merges extracted fields into an expense form without
// discarding anything the user already entered.
package reconcile

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"smartfill/internal/vendors"
	"smartfill/pkg/models"
)

const dateLayout = "2006-01-02"

// Reconciler applies the overwrite policy. The zero value treats no country
// or currency as a default and uses the wall clock for "today".
type Reconciler struct {
	// HomeCountry and DefaultCurrency are the values a new form starts with;
	// a form still holding them counts as unset.
	HomeCountry     string
	DefaultCurrency string

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time

	Log zerolog.Logger
}

// Result is a reconciled form with the vendor match that enriched it.
type Result struct {
	Form models.FormState `json:"form"`

	// Match is the directory profile used for enrichment, if any.
	Match *models.VendorProfile `json:"match,omitempty"`
	Score int                   `json:"score,omitempty"`

	// Applied lists the form fields (JSON names) that were overwritten.
	Applied []string `json:"applied"`
}

// Reconcile merges extracted into current. dir may be nil.
func (r *Reconciler) Reconcile(current models.FormState, extracted models.ExtractedFields, dir *vendors.Directory) Result {
	res := Result{Form: current, Applied: []string{}}

	if m := dir.Match(detailsOf(extracted)); m != nil {
		extracted = enrich(extracted, m)
		res.Match, res.Score = m.Profile, m.Score
		if res.Form.VendorID == "" {
			res.Form.VendorID = m.Profile.ID
		}
		r.Log.Debug().
			Str("vendor_id", m.Profile.ID).
			Int("score", m.Score).
			Bool("by_invoice_number", m.ByInvoiceNumber).
			Msg("Matched saved vendor")
	}

	r.apply(&res, extracted)
	r.Log.Debug().Strs("applied", res.Applied).Msg("Reconciled form")
	return res
}

func detailsOf(e models.ExtractedFields) vendors.Details {
	return vendors.Details{
		Name:          models.Value(e.Vendor),
		InvoiceNumber: models.Value(e.InvoiceNumber),
		Country:       models.Value(e.VendorCountry),
		Currency:      models.Value(e.Currency),
		Address:       models.Value(e.VendorAddress),
	}
}

// enrich fills gaps in e from the matched profile. The name is replaced when
// the match came from the invoice number, which is the stronger signal.
func enrich(e models.ExtractedFields, m *vendors.Match) models.ExtractedFields {
	p := m.Profile

	if p.Name != "" && (m.ByInvoiceNumber || blank(e.Vendor) || VendorTextLooksNoisy(*e.Vendor)) {
		e.Vendor = models.Ptr(p.Name)
	}
	if p.PrimaryAddress != "" && (blank(e.VendorAddress) || VendorAddressNeedsAssistance(*e.VendorAddress)) {
		e.VendorAddress = models.Ptr(p.PrimaryAddress)
	}
	fill(&e.VendorCountry, strings.ToUpper(p.Country))
	fill(&e.Currency, strings.ToUpper(p.PreferredCurrency))
	fill(&e.VATNumber, p.PrimaryVATNumber)
	fill(&e.ChamberOfCommerceNumber, p.PrimaryChamberOfCommerceNumber)
	fill(&e.PaymentMethod, p.DefaultPaymentMethod)
	return e
}

func fill(dst **string, v string) {
	if v != "" && blank(*dst) {
		*dst = &v
	}
}

func blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

func (r *Reconciler) apply(res *Result, e models.ExtractedFields) {
	f := &res.Form
	today := r.today()

	setString := func(name string, dst *string, v *string, unset func(string) bool) {
		if blank(v) || !unset(*dst) || *dst == *v {
			return
		}
		*dst = *v
		res.Applied = append(res.Applied, name)
	}
	isEmpty := func(s string) bool { return strings.TrimSpace(s) == "" }
	isDateUnset := func(s string) bool { return isEmpty(s) || s == today }

	if e.DocumentType != nil {
		dt := string(*e.DocumentType)
		setString("documentType", &f.DocumentType, &dt, isEmpty)
	}
	setString("invoiceNumber", &f.InvoiceNumber, e.InvoiceNumber, isEmpty)
	setString("date", &f.Date, e.Date, isDateUnset)
	setString("invoiceDate", &f.InvoiceDate, e.InvoiceDate, isDateUnset)
	setString("dueDate", &f.DueDate, e.DueDate, isDateUnset)
	setString("amount", &f.Amount, e.Amount, amountUnset)
	setString("currency", &f.Currency, e.Currency, r.currencyUnset)
	setString("vendor", &f.Vendor, e.Vendor, isEmpty)
	setString("vendorAddress", &f.VendorAddress, e.VendorAddress, isEmpty)
	setString("vendorCountry", &f.VendorCountry, e.VendorCountry, r.countryUnset)
	setString("vatNumber", &f.VATNumber, e.VATNumber, isEmpty)
	setString("description", &f.Description, e.Description, isEmpty)
	setString("paymentStatus", &f.PaymentStatus, e.PaymentStatus, paymentStatusUnset)
	setString("paymentMethod", &f.PaymentMethod, e.PaymentMethod, isEmpty)
	setString("chamberOfCommerceNumber", &f.ChamberOfCommerceNumber, e.ChamberOfCommerceNumber, isEmpty)

	if e.BTW != nil && f.BTW == 0 && *e.BTW != 0 {
		f.BTW = *e.BTW
		res.Applied = append(res.Applied, "btw")
	}
	if e.ReverseCharge != nil && !f.ReverseCharge && *e.ReverseCharge {
		f.ReverseCharge = true
		res.Applied = append(res.Applied, "reverseCharge")
	}
}

func (r *Reconciler) today() string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return now().Format(dateLayout)
}

func (r *Reconciler) countryUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || (r.HomeCountry != "" && strings.EqualFold(s, r.HomeCountry))
}

func (r *Reconciler) currencyUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || (r.DefaultCurrency != "" && strings.EqualFold(s, r.DefaultCurrency))
}

// amountUnset treats "", "0" and "0.00" as unset. Text that is not a number
// is kept, since the user typed it.
func amountUnset(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	return err == nil && d.IsZero()
}

func paymentStatusUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == models.PaymentStatusOpen
}

package models

// DocumentType classifies a scanned document.
type DocumentType string

const (
	DocumentInvoice   DocumentType = "invoice"
	DocumentReceipt   DocumentType = "receipt"
	DocumentStatement DocumentType = "statement"
	DocumentOther     DocumentType = "other"
)

// Payment statuses written by extraction post-processing.
const (
	PaymentStatusOpen = "open"
	PaymentStatusPaid = "paid"
)

// ExtractedFields is the sparse result of field extraction.
// A nil pointer means the extractor found no usable signal for that field.
type ExtractedFields struct {
	DocumentType  *DocumentType `json:"documentType,omitempty"`
	InvoiceNumber *string       `json:"invoiceNumber,omitempty"` // uppercase, alnum plus -_/
	Date          *string       `json:"date,omitempty"`          // YYYY-MM-DD
	InvoiceDate   *string       `json:"invoiceDate,omitempty"`   // YYYY-MM-DD
	DueDate       *string       `json:"dueDate,omitempty"`       // YYYY-MM-DD
	Amount        *string       `json:"amount,omitempty"`        // non-negative, two fraction digits
	Currency      *string       `json:"currency,omitempty"`      // ISO 4217
	Vendor        *string       `json:"vendor,omitempty"`
	VendorAddress *string       `json:"vendorAddress,omitempty"` // comma-joined lines
	VendorCountry *string       `json:"vendorCountry,omitempty"` // ISO 3166-1 alpha-2
	VATNumber     *string       `json:"vatNumber,omitempty"`
	BTW           *int          `json:"btw,omitempty"` // VAT rate, percent
	ReverseCharge *bool         `json:"reverseCharge,omitempty"`
	Description   *string       `json:"description,omitempty"`
	PaymentStatus *string       `json:"paymentStatus,omitempty"`

	// Only ever set by vendor enrichment.
	ChamberOfCommerceNumber *string `json:"chamberOfCommerceNumber,omitempty"`
	PaymentMethod           *string `json:"paymentMethod,omitempty"`

	// DateAmbiguous is true when a numeric date had day and month both <= 12
	// and was read day-first.
	DateAmbiguous bool `json:"dateAmbiguous,omitempty"`
}

// IsEmpty reports whether no field was extracted.
func (f ExtractedFields) IsEmpty() bool {
	return f.DocumentType == nil &&
		f.InvoiceNumber == nil &&
		f.Date == nil &&
		f.InvoiceDate == nil &&
		f.DueDate == nil &&
		f.Amount == nil &&
		f.Currency == nil &&
		f.Vendor == nil &&
		f.VendorAddress == nil &&
		f.VendorCountry == nil &&
		f.VATNumber == nil &&
		f.BTW == nil &&
		f.ReverseCharge == nil &&
		f.Description == nil &&
		f.PaymentStatus == nil &&
		f.ChamberOfCommerceNumber == nil &&
		f.PaymentMethod == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Value returns *p, or the zero value when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

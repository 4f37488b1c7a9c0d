package models

// FormState is the expense record a user is editing.
type FormState struct {
	// UI-only fields, never written by reconciliation
	ID    string `json:"id,omitempty"`
	Notes string `json:"notes,omitempty"`

	VendorID                string `json:"vendorId,omitempty"`
	DocumentType            string `json:"documentType"`
	InvoiceNumber           string `json:"invoiceNumber"`
	Date                    string `json:"date"`
	InvoiceDate             string `json:"invoiceDate"`
	DueDate                 string `json:"dueDate"`
	Amount                  string `json:"amount"`
	Currency                string `json:"currency"`
	Vendor                  string `json:"vendor"`
	VendorAddress           string `json:"vendorAddress"`
	VendorCountry           string `json:"vendorCountry"`
	VATNumber               string `json:"vatNumber"`
	BTW                     int    `json:"btw"`
	ReverseCharge           bool   `json:"reverseCharge"`
	Description             string `json:"description"`
	PaymentStatus           string `json:"paymentStatus"`
	PaymentMethod           string `json:"paymentMethod"`
	ChamberOfCommerceNumber string `json:"chamberOfCommerceNumber"`
}

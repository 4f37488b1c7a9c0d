package models

import "time"

// VendorProfile is a supplier learned from previously confirmed expenses.
// UsageCount only grows; NormalizedName is derived once when the profile is created.
type VendorProfile struct {
	ID                             string    `json:"id"`
	Name                           string    `json:"name"`
	NormalizedName                 string    `json:"normalizedName"`
	NameHistory                    []string  `json:"nameHistory,omitempty"`
	SearchTokens                   []string  `json:"searchTokens,omitempty"`
	InvoiceNumbers                 []string  `json:"invoiceNumbers,omitempty"`
	LastInvoiceNumber              string    `json:"lastInvoiceNumber,omitempty"`
	Country                        string    `json:"country,omitempty"`
	Countries                      []string  `json:"countries,omitempty"`
	PreferredCurrency              string    `json:"preferredCurrency,omitempty"`
	Currencies                     []string  `json:"currencies,omitempty"`
	PrimaryAddress                 string    `json:"primaryAddress,omitempty"`
	Addresses                      []string  `json:"addresses,omitempty"`
	PrimaryVATNumber               string    `json:"primaryVatNumber,omitempty"`
	PrimaryChamberOfCommerceNumber string    `json:"primaryChamberOfCommerceNumber,omitempty"`
	DefaultPaymentMethod           string    `json:"defaultPaymentMethod,omitempty"`
	UsageCount                     int       `json:"usageCount"`
	CreatedAt                      time.Time `json:"createdAt,omitempty"`
	UpdatedAt                      time.Time `json:"updatedAt,omitempty"`
}

package reconcile_test

import (
	"fmt"

	"smartfill/internal/reconcile"
	"smartfill/internal/vendors"
	"smartfill/pkg/models"
)

// Example merges a scan into a half-filled form and recognises a saved vendor
// from the invoice number.
func Example() {
	dir := vendors.NewDirectory([]models.VendorProfile{{
		ID:                "hetzner",
		Name:              "Hetzner Online GmbH",
		InvoiceNumbers:    []string{"R0012345678"},
		Country:           "DE",
		PreferredCurrency: "EUR",
	}})

	form := models.FormState{Description: "Server rent", Currency: "EUR"}
	scan := models.ExtractedFields{
		InvoiceNumber: models.Ptr("R0012345678"),
		Amount:        models.Ptr("4.51"),
		Description:   models.Ptr("Cloud server CX11"),
	}

	r := &reconcile.Reconciler{HomeCountry: "NL", DefaultCurrency: "EUR", Now: fixedNow}
	res := r.Reconcile(form, scan, dir)

	fmt.Println("matched:", res.Match.Name)
	fmt.Println("vendor:", res.Form.Vendor, res.Form.VendorCountry)
	fmt.Println("amount:", res.Form.Amount, res.Form.Currency)
	fmt.Println("description:", res.Form.Description)
	fmt.Println("applied:", res.Applied)
	// Output:
	// matched: Hetzner Online GmbH
	// vendor: Hetzner Online GmbH DE
	// amount: 4.51 EUR
	// description: Server rent
	// applied: [invoiceNumber amount vendor vendorCountry]
}

package extract_test

import (
	"fmt"

	"smartfill/internal/extract"
)

// Example extracts the basic fields from a short European invoice.
func Example() {
	text := `Bakkerij de Vries B.V.
Marktstraat 12
Utrecht
Bill to: Jan Jansen
Invoice no. 2024-031
Datum 14.02.2024
Totaal incl. BTW
Total 1.234,56 EUR`

	fields := extract.New().Extract(text)

	fmt.Println("vendor:", *fields.Vendor)
	fmt.Println("country:", *fields.VendorCountry)
	fmt.Println("invoice:", *fields.InvoiceNumber)
	fmt.Println("date:", *fields.InvoiceDate)
	fmt.Println("amount:", *fields.Amount, *fields.Currency)
	// Output:
	// vendor: Bakkerij de Vries B.V.
	// country: NL
	// invoice: 2024-031
	// date: 2024-02-14
	// amount: 1234.56 EUR
}

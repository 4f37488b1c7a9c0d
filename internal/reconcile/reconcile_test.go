package reconcile_test

import (
	"reflect"
	"testing"
	"time"

	"smartfill/internal/reconcile"
	"smartfill/internal/vendors"
	"smartfill/pkg/models"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

func newReconciler() *reconcile.Reconciler {
	return &reconcile.Reconciler{HomeCountry: "NL", DefaultCurrency: "EUR", Now: fixedNow}
}

func fullExtraction() models.ExtractedFields {
	return models.ExtractedFields{
		DocumentType:  models.Ptr(models.DocumentInvoice),
		InvoiceNumber: models.Ptr("INV-7"),
		Date:          models.Ptr("2024-04-02"),
		InvoiceDate:   models.Ptr("2024-04-02"),
		DueDate:       models.Ptr("2024-05-02"),
		Amount:        models.Ptr("99.95"),
		Currency:      models.Ptr("USD"),
		Vendor:        models.Ptr("Other Vendor Inc"),
		VendorAddress: models.Ptr("1 Main St, Springfield, USA"),
		VendorCountry: models.Ptr("US"),
		VATNumber:     models.Ptr("US123456789"),
		BTW:           models.Ptr(21),
		ReverseCharge: models.Ptr(true),
		Description:   models.Ptr("Widgets"),
		PaymentStatus: models.Ptr(models.PaymentStatusPaid),
	}
}

func TestReconcileMatchByInvoiceNumber(t *testing.T) {
	dir := vendors.NewDirectory([]models.VendorProfile{{
		ID:             "acme",
		Name:           "Acme Corporation Ltd",
		InvoiceNumbers: []string{"XYZ-1"},
	}})
	extracted := models.ExtractedFields{
		InvoiceNumber: models.Ptr("XYZ-1"),
		Vendor:        models.Ptr("Acme Corp"),
	}

	res := newReconciler().Reconcile(models.FormState{}, extracted, dir)

	if res.Match == nil || res.Match.ID != "acme" {
		t.Fatalf("match = %+v, want acme", res.Match)
	}
	if res.Form.Vendor != "Acme Corporation Ltd" {
		t.Errorf("vendor = %q, want canonical profile name", res.Form.Vendor)
	}
	if res.Form.InvoiceNumber != "XYZ-1" || res.Form.VendorID != "acme" {
		t.Errorf("form = %+v", res.Form)
	}
}

func TestReconcileEnrichesOnlyGaps(t *testing.T) {
	dir := vendors.NewDirectory([]models.VendorProfile{{
		ID:                             "bol",
		Name:                           "Bol.com B.V.",
		Country:                        "NL",
		PreferredCurrency:              "EUR",
		PrimaryAddress:                 "Papendorpseweg 100, Utrecht",
		PrimaryVATNumber:               "NL815488542B01",
		PrimaryChamberOfCommerceNumber: "30209090",
		DefaultPaymentMethod:           "ideal",
	}})
	extracted := models.ExtractedFields{
		Vendor:        models.Ptr("bol.com b.v."),
		VendorAddress: models.Ptr("Bill to: Jan"),
		VATNumber:     models.Ptr("NL000000000B00"),
	}

	res := newReconciler().Reconcile(models.FormState{}, extracted, dir)
	if res.Match == nil {
		t.Fatal("no match")
	}
	want := map[string]string{
		"vendor":                  "bol.com b.v.",
		"vendorAddress":           "Papendorpseweg 100, Utrecht",
		"vatNumber":               "NL000000000B00",
		"chamberOfCommerceNumber": "30209090",
		"paymentMethod":           "ideal",
	}
	got := map[string]string{
		"vendor":                  res.Form.Vendor,
		"vendorAddress":           res.Form.VendorAddress,
		"vatNumber":               res.Form.VATNumber,
		"chamberOfCommerceNumber": res.Form.ChamberOfCommerceNumber,
		"paymentMethod":           res.Form.PaymentMethod,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("form = %v, want %v", got, want)
	}
}

func TestReconcileKeepsFilledForm(t *testing.T) {
	current := models.FormState{Vendor: "My Own Entry", Amount: "500.00"}
	extracted := models.ExtractedFields{Vendor: models.Ptr("Other Vendor"), Amount: models.Ptr("10.00")}

	res := newReconciler().Reconcile(current, extracted, nil)

	if res.Form.Vendor != "My Own Entry" || res.Form.Amount != "500.00" {
		t.Errorf("form = %+v, filled values were overwritten", res.Form)
	}
	if len(res.Applied) != 0 {
		t.Errorf("applied = %v, want none", res.Applied)
	}
}

func TestReconcileNonDestructive(t *testing.T) {
	current := models.FormState{
		ID:                      "exp-1",
		Notes:                   "team lunch",
		DocumentType:            "receipt",
		InvoiceNumber:           "R-1",
		Date:                    "2024-03-01",
		InvoiceDate:             "2024-03-01",
		DueDate:                 "2024-03-31",
		Amount:                  "12.50",
		Currency:                "GBP",
		Vendor:                  "Pret",
		VendorAddress:           "Strand 1, London",
		VendorCountry:           "GB",
		VATNumber:               "GB999",
		BTW:                     20,
		ReverseCharge:           true,
		Description:             "Lunch",
		PaymentStatus:           models.PaymentStatusPaid,
		PaymentMethod:           "card",
		ChamberOfCommerceNumber: "123",
	}

	res := newReconciler().Reconcile(current, fullExtraction(), nil)
	if !reflect.DeepEqual(res.Form, current) {
		t.Errorf("form changed:\n got %+v\nwant %+v", res.Form, current)
	}
}

func TestReconcileTotalMergeWhenEmpty(t *testing.T) {
	e := fullExtraction()
	res := newReconciler().Reconcile(models.FormState{}, e, nil)
	f := res.Form

	checks := map[string][2]string{
		"documentType":  {f.DocumentType, string(*e.DocumentType)},
		"invoiceNumber": {f.InvoiceNumber, *e.InvoiceNumber},
		"date":          {f.Date, *e.Date},
		"invoiceDate":   {f.InvoiceDate, *e.InvoiceDate},
		"dueDate":       {f.DueDate, *e.DueDate},
		"amount":        {f.Amount, *e.Amount},
		"currency":      {f.Currency, *e.Currency},
		"vendor":        {f.Vendor, *e.Vendor},
		"vendorAddress": {f.VendorAddress, *e.VendorAddress},
		"vendorCountry": {f.VendorCountry, *e.VendorCountry},
		"vatNumber":     {f.VATNumber, *e.VATNumber},
		"description":   {f.Description, *e.Description},
		"paymentStatus": {f.PaymentStatus, *e.PaymentStatus},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if f.BTW != 21 || !f.ReverseCharge {
		t.Errorf("btw = %d, reverseCharge = %v", f.BTW, f.ReverseCharge)
	}
	if len(res.Applied) != 15 {
		t.Errorf("applied %d fields: %v", len(res.Applied), res.Applied)
	}
}

func TestReconcileDefaultsCountAsUnset(t *testing.T) {
	current := models.FormState{
		Date:          "2024-05-01", // today
		VendorCountry: "nl",
		Currency:      "EUR",
		Amount:        "0.00",
		PaymentStatus: models.PaymentStatusOpen,
	}
	extracted := models.ExtractedFields{
		Date:          models.Ptr("2024-04-28"),
		VendorCountry: models.Ptr("DE"),
		Currency:      models.Ptr("USD"),
		Amount:        models.Ptr("42.00"),
		PaymentStatus: models.Ptr(models.PaymentStatusPaid),
	}

	res := newReconciler().Reconcile(current, extracted, nil)
	f := res.Form
	if f.Date != "2024-04-28" || f.VendorCountry != "DE" || f.Currency != "USD" || f.Amount != "42.00" || f.PaymentStatus != "paid" {
		t.Errorf("defaults were not replaced: %+v", f)
	}
}

func TestReconcileKeepsUnparsableAmount(t *testing.T) {
	current := models.FormState{Amount: "see receipt"}
	res := newReconciler().Reconcile(current, models.ExtractedFields{Amount: models.Ptr("10.00")}, nil)
	if res.Form.Amount != "see receipt" {
		t.Errorf("amount = %q", res.Form.Amount)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	r := newReconciler()
	first := r.Reconcile(models.FormState{}, fullExtraction(), nil)
	second := r.Reconcile(first.Form, fullExtraction(), nil)
	if !reflect.DeepEqual(first.Form, second.Form) {
		t.Errorf("second pass changed the form:\n%+v\n%+v", first.Form, second.Form)
	}
	if len(second.Applied) != 0 {
		t.Errorf("second pass applied %v", second.Applied)
	}
}

func TestNoiseHeuristics(t *testing.T) {
	vendorCases := map[string]bool{
		"Acme Logistics Ltd":              false,
		"Invoice INV-2024-001":            true,
		"Total due":                       true,
		"a, b, c, d, e, f":                true,
		"Stripe Payments Europe, Limited": false,
		string(make([]byte, 81)):          true,
	}
	for in, want := range vendorCases {
		if got := reconcile.VendorTextLooksNoisy(in); got != want {
			t.Errorf("VendorTextLooksNoisy(%q) = %v, want %v", in, got, want)
		}
	}

	addressCases := map[string]bool{
		"221B Example Street, Rotterdam": false,
		"Rome":                           true,
		"Ship to: warehouse 4, Utrecht":  true,
		"billing@example.com, Amsterdam": true,
		"a,b,c,d,e,f,g long enough":      true,
	}
	for in, want := range addressCases {
		if got := reconcile.VendorAddressNeedsAssistance(in); got != want {
			t.Errorf("VendorAddressNeedsAssistance(%q) = %v, want %v", in, got, want)
		}
	}
}

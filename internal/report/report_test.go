package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"smartfill/pkg/models"
)

func TestWrite(t *testing.T) {
	rows := []Row{
		{
			File: "a.pdf",
			Fields: models.ExtractedFields{
				DocumentType:  models.Ptr(models.DocumentInvoice),
				InvoiceNumber: models.Ptr("INV-1"),
				Amount:        models.Ptr("1234.56"),
				Currency:      models.Ptr("EUR"),
				Vendor:        models.Ptr("Acme B.V."),
				BTW:           models.Ptr(21),
			},
		},
		{File: "b.txt", Fields: models.ExtractedFields{Currency: models.Ptr("USD")}},
		{File: "c.png"},
		{File: "d.pdf", Err: errors.New("document contains no readable text")},
	}

	var buf bytes.Buffer
	if err := Write(&buf, rows); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cells := map[string]string{
		"A1": "File",
		"A2": "a.pdf",
		"B2": "ok",
		"C2": "invoice",
		"D2": "INV-1",
		"G2": "1234.56",
		"I2": "Acme B.V.",
		"L2": "21",
		"B3": "partial",
		"H3": "USD",
		"B4": "empty",
		"B5": "error",
		"O5": "document contains no readable text",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("%s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	rowsOut, err := f.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rowsOut) != len(rows)+1 {
		t.Errorf("got %d rows, want %d", len(rowsOut), len(rows)+1)
	}
}

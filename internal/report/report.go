// Package report writes batch extraction results to an XLSX workbook.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"smartfill/pkg/models"
)

const sheet = "Extractions"

// Row is the outcome for one input file. Err is set when the file could not
// be read or recognised; Fields is then empty.
type Row struct {
	File   string
	Fields models.ExtractedFields
	Err    error
}

var headers = []string{
	"File",
	"Status",
	"Document Type",
	"Invoice Number",
	"Invoice Date",
	"Due Date",
	"Amount",
	"Currency",
	"Vendor",
	"Vendor Country",
	"VAT Number",
	"VAT Rate",
	"Reverse Charge",
	"Description",
	"Error",
}

// Workbook builds the report. Rows appear in the order given.
func Workbook(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, bold)

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.File)
		if r.Err != nil {
			write(2, "error")
			write(15, r.Err.Error())
			continue
		}
		write(2, status(r.Fields))

		e := r.Fields
		if e.DocumentType != nil {
			write(3, string(*e.DocumentType))
		}
		write(4, models.Value(e.InvoiceNumber))
		write(5, models.Value(e.InvoiceDate))
		write(6, models.Value(e.DueDate))
		if e.Amount != nil {
			if d, err := decimal.NewFromString(*e.Amount); err == nil {
				write(7, d.InexactFloat64())
				cell, _ := excelize.CoordinatesToCellName(7, row)
				_ = f.SetCellStyle(sheet, cell, cell, money)
			} else {
				write(7, *e.Amount)
			}
		}
		write(8, models.Value(e.Currency))
		write(9, models.Value(e.Vendor))
		write(10, models.Value(e.VendorCountry))
		write(11, models.Value(e.VATNumber))
		if e.BTW != nil {
			write(12, *e.BTW)
		}
		if e.ReverseCharge != nil && *e.ReverseCharge {
			write(13, "yes")
		}
		write(14, models.Value(e.Description))
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "C", "H", 14)
	_ = f.SetColWidth(sheet, "I", "I", 36)
	_ = f.SetColWidth(sheet, "K", "K", 18)
	_ = f.SetColWidth(sheet, "N", "O", 48)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f, nil
}

// Write builds the report and writes it as XLSX to w.
func Write(w io.Writer, rows []Row) error {
	f, err := Workbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// status is "empty" when nothing was extracted, "partial" when the amount or
// vendor is missing and "ok" otherwise.
func status(e models.ExtractedFields) string {
	switch {
	case e.IsEmpty():
		return "empty"
	case e.Amount == nil || e.Vendor == nil:
		return "partial"
	default:
		return "ok"
	}
}

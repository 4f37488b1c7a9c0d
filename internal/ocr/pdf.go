package ocr

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount parses a PDF and returns its number of pages.
func PageCount(pdf []byte) (int, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return 0, fmt.Errorf("%w: missing PDF header", ErrInvalidPDF)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return n, nil
}

func checkPDF(pdf []byte) (int, error) {
	n, err := PageCount(pdf)
	if err != nil {
		return 0, err
	}
	if n > MaxPagesSync {
		return 0, fmt.Errorf("%w: document has %d pages, limit is %d", ErrTooManyPages, n, MaxPagesSync)
	}
	return n, nil
}

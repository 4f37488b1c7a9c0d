package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"smartfill/internal/extract"
	"smartfill/internal/ocr"
)

func TestFindDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "scan.JPG", "notes.docx", ".hidden.pdf", "sub/c.png"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := findDocuments(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.pdf"), filepath.Join(dir, "scan.JPG")}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	got, err = findDocuments(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("recursive files = %v", got)
	}
}

type fakeReader map[string]string

func (f fakeReader) Read(_ context.Context, path string) (*ocr.Result, error) {
	text, ok := f[path]
	if !ok {
		return nil, ocr.ErrEmptyDocument
	}
	return &ocr.Result{Text: text}, nil
}

func TestExtractAllKeepsOrderAndFailures(t *testing.T) {
	reader := fakeReader{
		"one.txt":   "INVOICE\nInvoice number: A-1\nTotal €10.00",
		"three.txt": "Receipt\nAmount paid $5.25",
	}
	files := []string{"one.txt", "two.pdf", "three.txt"}

	rows, err := extractAll(context.Background(), files, 2, reader, extract.New(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range rows {
		if r.File != files[i] {
			t.Errorf("rows[%d].File = %q, want %q", i, r.File, files[i])
		}
	}
	if rows[0].Fields.Amount == nil || *rows[0].Fields.Amount != "10.00" {
		t.Errorf("row 0 amount = %v", rows[0].Fields.Amount)
	}
	if !errors.Is(rows[1].Err, ocr.ErrEmptyDocument) {
		t.Errorf("row 1 err = %v", rows[1].Err)
	}
	if rows[2].Fields.Currency == nil || *rows[2].Fields.Currency != "USD" {
		t.Errorf("row 2 currency = %v", rows[2].Fields.Currency)
	}
}

func TestExtractAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := extractAll(ctx, []string{"a.txt"}, 1, fakeReader{}, extract.New(), zerolog.Nop())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestReadForm(t *testing.T) {
	form, err := readForm("")
	if err != nil || form.Vendor != "" {
		t.Fatalf("empty path: %+v, %v", form, err)
	}

	path := filepath.Join(t.TempDir(), "form.json")
	if err := os.WriteFile(path, []byte(`{"vendor":"Acme","btw":21,"reverseCharge":true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	form, err = readForm(path)
	if err != nil {
		t.Fatal(err)
	}
	if form.Vendor != "Acme" || form.BTW != 21 || !form.ReverseCharge {
		t.Errorf("form = %+v", form)
	}

	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readForm(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestHandleOCRError(t *testing.T) {
	err := handleOCRError(ocr.NewOCRError("DocumentAISource.Text", ocr.ErrPermissionDenied, "denied"), zerolog.Nop())
	if !errors.Is(err, ocr.ErrPermissionDenied) {
		t.Errorf("err = %v, want wrapped ErrPermissionDenied", err)
	}
	if got := apiName(err); got != "Document AI" {
		t.Errorf("apiName = %q", got)
	}
}

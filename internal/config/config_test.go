package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HOME_COUNTRY", "DEFAULT_CURRENCY", "VENDOR_DIRECTORY", "LOCALE_FILE",
		"OCR_ENGINE", "BATCH_CONCURRENCY", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HomeCountry != "NL" || cfg.DefaultCurrency != "EUR" {
		t.Errorf("defaults = %s/%s", cfg.HomeCountry, cfg.DefaultCurrency)
	}
	if cfg.VendorDirectory != "vendors.json" || cfg.OCREngine != "vision" || cfg.BatchConcurrency != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.GetLoggerConfig().Output; got != "stderr" {
		t.Errorf("log output = %q, want stderr", got)
	}
}

func TestLoadNormalizesCase(t *testing.T) {
	t.Setenv("HOME_COUNTRY", "de")
	t.Setenv("DEFAULT_CURRENCY", "chf")
	t.Setenv("OCR_ENGINE", "DocumentAI")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HomeCountry != "DE" || cfg.DefaultCurrency != "CHF" || cfg.OCRSettings().Engine != "documentai" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantMsg string
	}{
		{"HOME_COUNTRY", "NLD", "HOME_COUNTRY"},
		{"DEFAULT_CURRENCY", "€", "DEFAULT_CURRENCY"},
		{"OCR_ENGINE", "tesseract", "OCR_ENGINE"},
		{"BATCH_CONCURRENCY", "0", "BATCH_CONCURRENCY"},
		{"BATCH_CONCURRENCY", "many", "BATCH_CONCURRENCY"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantMsg)
			}
		})
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"smartfill/internal/logger"
	"smartfill/internal/ocr"
)

type Config struct {
	// Form defaults; a form field still holding them counts as unset.
	HomeCountry     string
	DefaultCurrency string

	// Vendor profile directory (JSON file)
	VendorDirectory string

	// Optional YAML file merged over the built-in locale tables
	LocaleFile string

	// OCR Configuration
	OCREngine                  string
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Batch Configuration
	BatchConcurrency int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		HomeCountry:                strings.ToUpper(getEnv("HOME_COUNTRY", "NL")),
		DefaultCurrency:            strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),
		VendorDirectory:            getEnv("VENDOR_DIRECTORY", "vendors.json"),
		LocaleFile:                 getEnv("LOCALE_FILE", ""),
		OCREngine:                  strings.ToLower(getEnv("OCR_ENGINE", ocr.EngineVision)),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	concurrency, err := strconv.Atoi(getEnv("BATCH_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: BATCH_CONCURRENCY must be an integer: %w", err)
	}
	config.BatchConcurrency = concurrency

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if !isLetters(c.HomeCountry, 2) {
		return fmt.Errorf("HOME_COUNTRY must be a two-letter country code, got %q", c.HomeCountry)
	}
	if !isLetters(c.DefaultCurrency, 3) {
		return fmt.Errorf("DEFAULT_CURRENCY must be a three-letter currency code, got %q", c.DefaultCurrency)
	}
	if c.VendorDirectory == "" {
		return fmt.Errorf("VENDOR_DIRECTORY must not be empty")
	}
	switch c.OCREngine {
	case ocr.EngineVision, ocr.EngineDocumentAI:
	default:
		return fmt.Errorf("OCR_ENGINE must be %q or %q, got %q", ocr.EngineVision, ocr.EngineDocumentAI, c.OCREngine)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	return nil
}

// OCRSettings returns the text source settings from the main config
func (c *Config) OCRSettings() ocr.Settings {
	return ocr.Settings{
		Engine:           c.OCREngine,
		ProjectID:        c.GoogleCloudProject,
		Location:         c.GoogleCloudLocation,
		ProcessorID:      c.DocumentAIProcessorID,
		ProcessorVersion: c.DocumentAIProcessorVersion,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

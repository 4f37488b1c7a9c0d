package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"smartfill/internal/config"
	"smartfill/internal/extract"
	"smartfill/internal/locale"
	"smartfill/internal/ocr"
)

// documentReader turns files into text. Text files are read locally; the
// configured OCR engine is only connected on the first scanned document.
type documentReader struct {
	settings ocr.Settings
	log      zerolog.Logger

	once   sync.Once
	remote ocr.TextSource
	err    error
}

func newDocumentReader(cfg *config.Config, log zerolog.Logger) *documentReader {
	return &documentReader{settings: cfg.OCRSettings(), log: log}
}

func (d *documentReader) source(ctx context.Context) (ocr.TextSource, error) {
	d.once.Do(func() {
		if !ocr.HasCredentials() {
			d.log.Warn().Msg("No explicit Google Cloud credentials, trying Application Default Credentials")
		}
		d.remote, d.err = ocr.NewSource(ctx, d.settings)
		if d.err == nil {
			d.log.Debug().Str("engine", d.settings.Engine).Msg("OCR source created")
		}
	})
	return d.remote, d.err
}

// Read returns the text of the document at path.
func (d *documentReader) Read(ctx context.Context, path string) (*ocr.Result, error) {
	if _, err := validateDocumentFile(path, d.log); err != nil {
		return nil, err
	}

	// Open document
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	// Sniff content type from the first bytes
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mimeType := ocr.DetectMimeType(path, head[:n])
	if mimeType == ocr.MimeText {
		return ocr.PlainText{}.Text(ctx, f, mimeType)
	}
	if !ocr.Supported(mimeType) {
		return nil, ocr.NewOCRError("Read", ocr.ErrUnsupportedType, mimeType)
	}

	// Remote OCR
	src, err := d.source(ctx)
	if err != nil {
		return nil, err
	}
	return src.Text(ctx, f, mimeType)
}

func (d *documentReader) Close() {
	if d.remote != nil {
		if err := d.remote.Close(); err != nil {
			d.log.Warn().Err(err).Msg("Failed to close OCR source")
		}
	}
}

// validateDocumentFile checks that path is a readable, non-empty regular
// file within the OCR size limit.
func validateDocumentFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	// Check if file exists and get info
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("Document not found")
			return nil, fmt.Errorf("document not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", path).Msg("Permission denied accessing document")
			return nil, fmt.Errorf("permission denied accessing document: %s", path)
		}
		return nil, fmt.Errorf("error accessing document: %w", err)
	}
	// Check if it's a regular file
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	// Check file size
	if info.Size() == 0 {
		return nil, fmt.Errorf("document is empty: %s", path)
	}
	if info.Size() > ocr.MaxFileSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", info.Size()).
			Int64("max_size", ocr.MaxFileSizeBytes).
			Msg("Document exceeds maximum size limit")
		return nil, fmt.Errorf("document too large (%d bytes), maximum is %d bytes (20MB)", info.Size(), ocr.MaxFileSizeBytes)
	}
	return info, nil
}

// handleOCRError turns text source failures into messages a user can act on.
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Reading document failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("text recognition timed out, try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("text recognition was canceled")
	case errors.Is(err, ocr.ErrFileTooLarge):
		return fmt.Errorf("document is too large (maximum 20MB), try compressing or splitting it")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages (maximum %d), try splitting it", ocr.MaxPagesSync)
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file: %w", err)
	case errors.Is(err, ocr.ErrUnsupportedType):
		return fmt.Errorf("unsupported document type, use PDF, TIFF, GIF, JPEG, PNG or plain text: %w", err)
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials not configured. Set one of:\n\n" +
			"1. GOOGLE_APPLICATION_CREDENTIALS with the path to a service account JSON file\n" +
			"2. GOOGLE_CREDENTIALS with the inline JSON\n" +
			"3. Application Default Credentials: gcloud auth application-default login")
	case errors.Is(err, ocr.ErrPermissionDenied):
		return fmt.Errorf("permission denied, check that the service account may use the %s API: %w", apiName(err), err)
	case errors.Is(err, ocr.ErrQuotaExceeded):
		return fmt.Errorf("Google Cloud quota exceeded, check your project quotas in the Cloud Console")
	case errors.Is(err, ocr.ErrProcessorNotFound):
		return fmt.Errorf("Document AI processor not found, check DOCUMENT_AI_PROCESSOR_ID and GOOGLE_CLOUD_LOCATION")
	case errors.Is(err, ocr.ErrInvalidConfiguration):
		return fmt.Errorf("invalid OCR configuration: %w", err)
	default:
		return fmt.Errorf("reading document failed: %w", err)
	}
}

func apiName(err error) string {
	var ocrErr *ocr.OCRError
	if errors.As(err, &ocrErr) && strings.HasPrefix(ocrErr.Op, "DocumentAI") {
		return "Document AI"
	}
	return "Cloud Vision"
}

// newExtractor builds an extractor with the configured locale tables.
func newExtractor(cfg *config.Config, log zerolog.Logger) (*extract.Extractor, error) {
	tables, err := locale.LoadFile(cfg.LocaleFile)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.LocaleFile).Msg("Failed to load locale tables")
		return nil, fmt.Errorf("failed to load locale tables: %w", err)
	}
	return extract.New(extract.WithTables(tables), extract.WithLogger(log)), nil
}

// writeJSON writes v as indented JSON to outputPath, or stdout when empty.
func writeJSON(v any, outputPath string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Error().Err(err).Str("output_file", outputPath).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output_file", outputPath).Int("bytes", len(data)).Msg("Results written to file")
	return nil
}

// Package ocr produces the raw document text that field extraction works on.
//
// Three sources are available:
//   - Google Cloud Vision document text detection (PDF, TIFF, GIF, JPEG, PNG)
//   - Google Document AI (PDF and images, through a configured processor)
//   - plain text files, read as-is
//
// Credentials for the Google sources come from GOOGLE_CREDENTIALS (inline
// JSON) or GOOGLE_APPLICATION_CREDENTIALS (file path), falling back to
// Application Default Credentials.
//
// Synchronous recognition is limited to MaxFileSizeBytes per document and
// MaxPagesSync pages per PDF; both are checked before any API call.
package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxFileSizeBytes is the largest document sent for synchronous recognition.
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the page limit for synchronous PDF recognition.
	MaxPagesSync = 5
)

// Engines understood by NewSource.
const (
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

// MIME types routed by the sources.
const (
	MimePDF   = "application/pdf"
	MimeTIFF  = "image/tiff"
	MimeGIF   = "image/gif"
	MimeJPEG  = "image/jpeg"
	MimePNG   = "image/png"
	MimeText  = "text/plain"
	mimeOctet = "application/octet-stream"
)

// TextSource turns one document into raw text.
type TextSource interface {
	// Text reads the whole document from data. mimeType selects how the
	// bytes are interpreted; see DetectMimeType.
	Text(ctx context.Context, data io.Reader, mimeType string) (*Result, error)

	// Close releases API clients held by the source.
	Close() error
}

// Result is the recognised text of one document.
type Result struct {
	// Text is the text of all pages in reading order. Pages after the first
	// are preceded by a "--- Page N ---" separator line.
	Text string `json:"text"`

	PageCount int `json:"page_count"`

	// Confidence is the mean confidence reported by the engine, 0 when the
	// engine reports none.
	Confidence float32 `json:"confidence,omitempty"`

	LanguageCodes []string `json:"language_codes,omitempty"`

	Engine             string        `json:"engine"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Settings selects and configures a text source.
type Settings struct {
	Engine string

	// Document AI only.
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

// NewSource builds the text source named by s.Engine. Plain text documents
// never reach the network; Router sends them to PlainText regardless of the
// engine.
func NewSource(ctx context.Context, s Settings) (TextSource, error) {
	const op = "NewSource"

	var (
		remote TextSource
		err    error
	)
	switch strings.ToLower(s.Engine) {
	case "", EngineVision:
		remote, err = NewGoogleVisionSource(ctx)
	case EngineDocumentAI:
		remote, err = NewDocumentAISource(ctx, DocumentAIConfig{
			ProjectID:        s.ProjectID,
			Location:         s.Location,
			ProcessorID:      s.ProcessorID,
			ProcessorVersion: s.ProcessorVersion,
		})
	default:
		return nil, NewOCRError(op, ErrInvalidConfiguration, fmt.Sprintf("unknown engine %q", s.Engine))
	}
	if err != nil {
		return nil, err
	}
	return &Router{Remote: remote, Plain: PlainText{}}, nil
}

// Router sends plain text to Plain and everything else to Remote.
type Router struct {
	Remote TextSource
	Plain  TextSource
}

func (r *Router) Text(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	if mimeType == MimeText {
		return r.Plain.Text(ctx, data, mimeType)
	}
	return r.Remote.Text(ctx, data, mimeType)
}

func (r *Router) Close() error {
	return r.Remote.Close()
}

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".tif":  MimeTIFF,
	".tiff": MimeTIFF,
	".gif":  MimeGIF,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".png":  MimePNG,
	".txt":  MimeText,
	".text": MimeText,
}

// DetectMimeType returns the MIME type of a document from its file name,
// falling back to content sniffing of head when the extension is unknown.
func DetectMimeType(name string, head []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	if len(head) == 0 {
		return mimeOctet
	}
	t, _, _ := strings.Cut(http.DetectContentType(head), ";")
	return t
}

// Supported reports whether some source can read mimeType.
func Supported(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimeTIFF, MimeGIF, MimeJPEG, MimePNG, MimeText:
		return true
	}
	return false
}

// readDocument reads data fully and enforces the size limit and, for PDFs,
// the header and page limit.
func readDocument(op string, data io.Reader, mimeType string) ([]byte, int, error) {
	if !Supported(mimeType) {
		return nil, 0, NewOCRError(op, ErrUnsupportedType, mimeType)
	}
	b, err := io.ReadAll(io.LimitReader(data, MaxFileSizeBytes+1))
	if err != nil {
		return nil, 0, WrapOCRError(op, err, "failed to read document")
	}
	if len(b) > MaxFileSizeBytes {
		return nil, 0, NewOCRError(op, ErrFileTooLarge, fmt.Sprintf("more than %d bytes", MaxFileSizeBytes))
	}
	if len(b) == 0 {
		return nil, 0, NewOCRError(op, ErrEmptyDocument, "no data")
	}

	pages := 1
	if mimeType == MimePDF {
		if pages, err = checkPDF(b); err != nil {
			return nil, 0, WrapOCRError(op, err, "")
		}
	}
	return b, pages, nil
}

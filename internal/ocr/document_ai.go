package ocr

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig names the processor that reads documents.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string // "us", "eu", ...
	ProcessorID      string
	ProcessorVersion string // optional

	// Timeout bounds a single ProcessDocument call. Zero means 60s.
	Timeout time.Duration
}

func (c DocumentAIConfig) processorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
	if c.ProcessorVersion != "" {
		name += "/processorVersions/" + c.ProcessorVersion
	}
	return name
}

// DocumentAISource reads documents with a Document AI processor. Only the
// document text is used; entity extraction is left to the field extractor.
type DocumentAISource struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAISource creates a client for the regional endpoint of cfg.Location.
func NewDocumentAISource(ctx context.Context, cfg DocumentAIConfig) (*DocumentAISource, error) {
	const op = "NewDocumentAISource"

	if cfg.ProjectID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	creds := credentialOptions()
	opts := slices.Clone(creds)
	if cfg.Location != "us" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		if len(creds) == 0 {
			return nil, NewOCRError(op, ErrMissingCredentials, err.Error())
		}
		return nil, WrapOCRError(op, err, "failed to create Document AI client for location "+cfg.Location)
	}
	return &DocumentAISource{client: client, config: cfg}, nil
}

func (d *DocumentAISource) Text(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "DocumentAISource.Text"
	start := time.Now()

	content, _, err := readDocument(op, data, mimeType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.config.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: content, MimeType: mimeType},
		},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, NewOCRError(op, ErrOCRFailed, "no document in response")
	}

	result, err := documentText(resp.GetDocument())
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}
	result.Engine = EngineDocumentAI
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)
	return result, nil
}

// documentText lays the document text out page by page when every page
// carries a text anchor, and returns it unchanged otherwise.
func documentText(doc *documentaipb.Document) (*Result, error) {
	full := doc.GetText()
	if strings.TrimSpace(full) == "" {
		return nil, ErrEmptyDocument
	}

	res := &Result{Text: full, PageCount: len(doc.GetPages())}

	var (
		parts     []string
		confSum   float32
		languages = map[string]bool{}
	)
	for _, p := range doc.GetPages() {
		confSum += p.GetLayout().GetConfidence()
		for _, lang := range p.GetDetectedLanguages() {
			if lang.GetLanguageCode() != "" {
				languages[lang.GetLanguageCode()] = true
			}
		}
		if start, end, ok := pageSpan(p, len(full)); ok {
			parts = append(parts, full[start:end])
		}
	}

	if n := len(doc.GetPages()); n > 0 {
		res.Confidence = confSum / float32(n)
		if len(parts) == n {
			var b strings.Builder
			for i, part := range parts {
				if i > 0 {
					fmt.Fprintf(&b, "\n\n--- Page %d ---\n\n", i+1)
				}
				b.WriteString(strings.TrimRight(part, "\n"))
			}
			res.Text = b.String()
		}
	}
	for lang := range languages {
		res.LanguageCodes = append(res.LanguageCodes, lang)
	}
	slices.Sort(res.LanguageCodes)
	return res, nil
}

// pageSpan returns the byte range of doc.Text covered by a page.
func pageSpan(p *documentaipb.Document_Page, textLen int) (int, int, bool) {
	segs := p.GetLayout().GetTextAnchor().GetTextSegments()
	if len(segs) == 0 {
		return 0, 0, false
	}
	start, end := segs[0].GetStartIndex(), segs[0].GetEndIndex()
	for _, s := range segs[1:] {
		start = min(start, s.GetStartIndex())
		end = max(end, s.GetEndIndex())
	}
	if start < 0 || end > int64(textLen) || start >= end {
		return 0, 0, false
	}
	return int(start), int(end), true
}

// Close closes the Document AI client.
func (d *DocumentAISource) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

package ocr

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		name string
		head string
		want string
	}{
		{"invoice.PDF", "", MimePDF},
		{"scan.jpeg", "", MimeJPEG},
		{"notes.txt", "", MimeText},
		{"upload", "%PDF-1.7\n", MimePDF},
		{"upload", "\x89PNG\r\n\x1a\n0000", MimePNG},
		{"upload", "Invoice 12\nTotal 5.00", MimeText},
		{"upload", "", mimeOctet},
	}
	for _, tt := range tests {
		if got := DetectMimeType(tt.name, []byte(tt.head)); got != tt.want {
			t.Errorf("DetectMimeType(%q, %q) = %q, want %q", tt.name, tt.head, got, tt.want)
		}
	}
}

func TestReadDocument(t *testing.T) {
	tests := []struct {
		name     string
		data     io.Reader
		mimeType string
		wantErr  error
	}{
		{"unsupported", strings.NewReader("PK"), "application/zip", ErrUnsupportedType},
		{"empty", strings.NewReader(""), MimePNG, ErrEmptyDocument},
		{"missing header", strings.NewReader("hello"), MimePDF, ErrInvalidPDF},
		{"broken pdf", strings.NewReader("%PDF-1.4\nnot a pdf at all\n"), MimePDF, ErrInvalidPDF},
		{"too large", io.LimitReader(zeros{}, MaxFileSizeBytes+10), MimePNG, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readDocument("test", tt.data, tt.mimeType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var ocrErr *OCRError
			if !errors.As(err, &ocrErr) || ocrErr.Op != "test" {
				t.Errorf("err = %#v, want *OCRError for op test", err)
			}
		})
	}
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestPlainText(t *testing.T) {
	res, err := PlainText{}.Text(context.Background(), strings.NewReader("Invoice 1\r\nTotal 5.00\r\n"), MimeText)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Invoice 1\nTotal 5.00\n" || res.PageCount != 1 || res.Engine != "text" {
		t.Errorf("result = %+v", res)
	}

	_, err = PlainText{}.Text(context.Background(), strings.NewReader(" \n\t"), MimeText)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("blank text: err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (PlainText{}).Text(ctx, strings.NewReader("x"), MimeText); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: err = %v", err)
	}
}

type recordingSource struct{ calls int }

func (r *recordingSource) Text(context.Context, io.Reader, string) (*Result, error) {
	r.calls++
	return &Result{Text: "remote"}, nil
}

func (r *recordingSource) Close() error { return nil }

func TestRouter(t *testing.T) {
	remote := &recordingSource{}
	r := &Router{Remote: remote, Plain: PlainText{}}

	res, err := r.Text(context.Background(), strings.NewReader("local text"), MimeText)
	if err != nil || res.Text != "local text" {
		t.Fatalf("text document: %+v, %v", res, err)
	}
	if _, err := r.Text(context.Background(), strings.NewReader("%PDF"), MimePDF); err != nil {
		t.Fatal(err)
	}
	if remote.calls != 1 {
		t.Errorf("remote called %d times, want 1", remote.calls)
	}
}

func TestNewSourceUnknownEngine(t *testing.T) {
	_, err := NewSource(context.Background(), Settings{Engine: "tesseract"})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewDocumentAISourceRequiresProcessor(t *testing.T) {
	_, err := NewDocumentAISource(context.Background(), DocumentAIConfig{ProjectID: "p"})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessorName(t *testing.T) {
	c := DocumentAIConfig{ProjectID: "p", Location: "eu", ProcessorID: "abc"}
	if got := c.processorName(); got != "projects/p/locations/eu/processors/abc" {
		t.Errorf("processorName = %q", got)
	}
	c.ProcessorVersion = "v2"
	if got := c.processorName(); got != "projects/p/locations/eu/processors/abc/processorVersions/v2" {
		t.Errorf("processorName = %q", got)
	}
}

func visionPage(text string, conf float32, langs ...string) *visionpb.AnnotateImageResponse {
	prop := &visionpb.TextAnnotation_TextProperty{}
	for _, l := range langs {
		prop.DetectedLanguages = append(prop.DetectedLanguages, &visionpb.TextAnnotation_DetectedLanguage{LanguageCode: l})
	}
	return &visionpb.AnnotateImageResponse{
		FullTextAnnotation: &visionpb.TextAnnotation{
			Text:  text,
			Pages: []*visionpb.Page{{Confidence: conf, Property: prop}},
		},
	}
}

func TestPagesText(t *testing.T) {
	res, err := pagesText([]*visionpb.AnnotateImageResponse{
		visionPage("Invoice 7\n", 0.9, "nl"),
		visionPage("Total 10.00\n", 0.7, "en", "nl"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "Invoice 7\n\n\n--- Page 2 ---\n\nTotal 10.00\n"
	if res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if res.PageCount != 2 || math.Abs(float64(res.Confidence)-0.8) > 1e-6 {
		t.Errorf("pages = %d, confidence = %v", res.PageCount, res.Confidence)
	}
	if strings.Join(res.LanguageCodes, ",") != "en,nl" {
		t.Errorf("languages = %v", res.LanguageCodes)
	}

	if _, err := pagesText([]*visionpb.AnnotateImageResponse{visionPage(" \n", 0)}); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("blank page: err = %v", err)
	}
	many := make([]*visionpb.AnnotateImageResponse, MaxPagesSync+1)
	for i := range many {
		many[i] = visionPage("x", 1)
	}
	if _, err := pagesText(many); !errors.Is(err, ErrTooManyPages) {
		t.Errorf("too many pages: err = %v", err)
	}
}

func anchoredPage(start, end int64, conf float32) *documentaipb.Document_Page {
	return &documentaipb.Document_Page{
		Layout: &documentaipb.Document_Page_Layout{
			Confidence: conf,
			TextAnchor: &documentaipb.Document_TextAnchor{
				TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
			},
		},
	}
}

func TestDocumentText(t *testing.T) {
	doc := &documentaipb.Document{
		Text:  "Page one\nPage two\n",
		Pages: []*documentaipb.Document_Page{anchoredPage(0, 9, 0.9), anchoredPage(9, 18, 0.7)},
	}
	res, err := documentText(doc)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Page one\n\n--- Page 2 ---\n\nPage two"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}

	doc.Pages[1].Layout.TextAnchor = nil
	res, err = documentText(doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != doc.Text {
		t.Errorf("unanchored page: text = %q, want document text", res.Text)
	}

	if _, err := documentText(&documentaipb.Document{}); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("empty document: err = %v", err)
	}
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{status.Error(codes.PermissionDenied, "caller lacks role"), ErrPermissionDenied},
		{status.Error(codes.ResourceExhausted, "slow down"), ErrQuotaExceeded},
		{status.Error(codes.NotFound, "processor"), ErrProcessorNotFound},
		{status.Error(codes.DeadlineExceeded, "late"), context.DeadlineExceeded},
		{errors.New("oauth2: invalid_grant"), ErrPermissionDenied},
		{context.Canceled, context.Canceled},
		{errors.New("connection reset"), ErrOCRFailed},
	}
	for _, tt := range tests {
		got := classifyAPIError("call", tt.err)
		if !errors.Is(got, tt.want) {
			t.Errorf("classifyAPIError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

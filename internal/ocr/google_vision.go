package ocr

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// GoogleVisionSource reads documents with Cloud Vision document text
// detection. PDF, TIFF and GIF go through file annotation, other images
// through image annotation.
type GoogleVisionSource struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionSource creates a Vision client from the environment credentials.
func NewGoogleVisionSource(ctx context.Context) (*GoogleVisionSource, error) {
	const op = "NewGoogleVisionSource"

	opts := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, NewOCRError(op, ErrMissingCredentials, err.Error())
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}
	return &GoogleVisionSource{client: client}, nil
}

// NewGoogleVisionSourceWithClient wraps an existing client.
func NewGoogleVisionSourceWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionSource {
	return &GoogleVisionSource{client: client}
}

func (g *GoogleVisionSource) Text(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "GoogleVisionSource.Text"
	start := time.Now()

	content, _, err := readDocument(op, data, mimeType)
	if err != nil {
		return nil, err
	}

	var result *Result
	switch mimeType {
	case MimePDF, MimeTIFF, MimeGIF:
		result, err = g.annotateFile(ctx, content, mimeType)
	case MimeJPEG, MimePNG:
		result, err = g.annotateImage(ctx, content)
	default:
		return nil, NewOCRError(op, ErrUnsupportedType, mimeType)
	}
	if err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	result.Engine = EngineVision
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)
	return result, nil
}

var textDetection = []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}}

func (g *GoogleVisionSource) annotateFile(ctx context.Context, content []byte, mimeType string) (*Result, error) {
	const op = "annotateFile"

	resp, err := g.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{{
			InputConfig: &visionpb.InputConfig{Content: content, MimeType: mimeType},
			Features:    textDetection,
		}},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, NewOCRError(op, ErrOCRFailed, "empty response")
	}
	fileResp := resp.GetResponses()[0]
	if e := fileResp.GetError(); e != nil {
		return nil, NewOCRError(op, ErrOCRFailed, e.GetMessage())
	}
	return pagesText(fileResp.GetResponses())
}

func (g *GoogleVisionSource) annotateImage(ctx context.Context, content []byte) (*Result, error) {
	const op = "annotateImage"

	resp, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: content},
			Features: textDetection,
		}},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}
	return pagesText(resp.GetResponses())
}

// pagesText joins the per-page annotations into one Result.
func pagesText(pages []*visionpb.AnnotateImageResponse) (*Result, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(pages) > MaxPagesSync {
		return nil, fmt.Errorf("%w: document has %d pages", ErrTooManyPages, len(pages))
	}

	var (
		text      strings.Builder
		confSum   float32
		confCount int
		languages = map[string]bool{}
	)
	for i, page := range pages {
		if e := page.GetError(); e != nil {
			return nil, fmt.Errorf("%w: page %d: %s", ErrOCRFailed, i+1, e.GetMessage())
		}
		full := page.GetFullTextAnnotation()
		if full == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintf(&text, "\n\n--- Page %d ---\n\n", i+1)
		}
		text.WriteString(full.GetText())

		for _, p := range full.GetPages() {
			if p.GetConfidence() > 0 {
				confSum += p.GetConfidence()
				confCount++
			}
			for _, lang := range p.GetProperty().GetDetectedLanguages() {
				if lang.GetLanguageCode() != "" {
					languages[lang.GetLanguageCode()] = true
				}
			}
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, ErrEmptyDocument
	}

	res := &Result{Text: text.String(), PageCount: len(pages)}
	if confCount > 0 {
		res.Confidence = confSum / float32(confCount)
	}
	for lang := range languages {
		res.LanguageCodes = append(res.LanguageCodes, lang)
	}
	slices.Sort(res.LanguageCodes)
	return res, nil
}

// Close closes the Vision client.
func (g *GoogleVisionSource) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

package ocr

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// PlainText is the source for documents that already are text.
type PlainText struct{}

func (PlainText) Text(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "PlainText.Text"
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "")
	}
	b, _, err := readDocument(op, data, MimeText)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		b = []byte(strings.ToValidUTF8(string(b), "�"))
	}
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, NewOCRError(op, ErrEmptyDocument, "only whitespace")
	}

	now := time.Now()
	return &Result{
		Text:               text,
		PageCount:          1,
		Engine:             "text",
		ProcessedAt:        now,
		ProcessingDuration: now.Sub(start),
	}, nil
}

func (PlainText) Close() error { return nil }

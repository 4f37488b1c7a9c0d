package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrFileTooLarge is returned for documents above MaxFileSizeBytes.
	ErrFileTooLarge = errors.New("document exceeds the maximum size (20MB)")

	// ErrInvalidPDF is returned when a document claimed to be a PDF cannot be parsed.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrUnsupportedType is returned for MIME types no source can read.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrTooManyPages is returned when a PDF has more pages than synchronous
	// recognition accepts.
	ErrTooManyPages = errors.New("PDF has too many pages for synchronous recognition")

	// ErrEmptyDocument is returned when no readable text was found.
	ErrEmptyDocument = errors.New("document contains no readable text")

	ErrOCRFailed            = errors.New("text recognition failed")
	ErrMissingCredentials   = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
	ErrInvalidConfiguration = errors.New("invalid OCR configuration")
	ErrPermissionDenied     = errors.New("permission denied by the recognition API")
	ErrQuotaExceeded        = errors.New("recognition API quota exceeded")
	ErrProcessorNotFound    = errors.New("Document AI processor not found")
)

// OCRError records which operation of a text source failed.
type OCRError struct {
	Op      string
	Err     error
	Details string
}

func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s: %v", e.Op, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

func (e *OCRError) Is(target error) bool { return errors.Is(e.Err, target) }

// NewOCRError creates an OCRError.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{Op: op, Err: err, Details: details}
}

// WrapOCRError wraps err unless it already is an *OCRError. A nil err stays nil.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}
	return NewOCRError(op, err, details)
}

// classifyAPIError maps an error from a Google API call onto the package
// sentinels. gRPC status codes are checked first, then the message text for
// errors raised by the auth transport before a status exists.
func classifyAPIError(op string, err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return WrapOCRError(op, ErrPermissionDenied, err.Error())
	case codes.ResourceExhausted:
		return WrapOCRError(op, ErrQuotaExceeded, err.Error())
	case codes.NotFound:
		return WrapOCRError(op, ErrProcessorNotFound, err.Error())
	case codes.InvalidArgument:
		return WrapOCRError(op, ErrUnsupportedType, err.Error())
	case codes.DeadlineExceeded:
		return WrapOCRError(op, context.DeadlineExceeded, "recognition timed out")
	case codes.Canceled:
		return WrapOCRError(op, context.Canceled, "recognition was canceled")
	}

	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return WrapOCRError(op, err, "")
	case strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "invalid_rapt"),
		strings.Contains(msg, "per-RPC creds failed"),
		strings.Contains(msg, "PERMISSION_DENIED"):
		return WrapOCRError(op, ErrPermissionDenied, msg)
	case strings.Contains(msg, "QUOTA_EXCEEDED"):
		return WrapOCRError(op, ErrQuotaExceeded, msg)
	default:
		return WrapOCRError(op, ErrOCRFailed, msg)
	}
}

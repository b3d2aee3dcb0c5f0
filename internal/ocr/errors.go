package ocr

import (
	"errors"
	"fmt"
)

// Common OCR provider errors
var (
	// ErrMissingEndpoint is returned at construction when the Clova invoke
	// URL is not configured.
	ErrMissingEndpoint = errors.New("missing OCR endpoint: set CLOVA_OCR_URL")

	// ErrMissingSecret is returned at construction when the Clova pre-shared
	// secret is not configured.
	ErrMissingSecret = errors.New("missing OCR secret: set CLOVA_SECRET_KEY")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrMissingProcessor is returned at construction when the Document AI
	// engine is selected without a project or processor ID.
	ErrMissingProcessor = errors.New("missing Document AI processor: set GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID")

	// ErrRequestFailed is returned when the provider keeps failing with
	// server-side or network errors after all retries are exhausted.
	ErrRequestFailed = errors.New("OCR provider request failed after retries")

	// ErrRequestRejected is returned when the provider rejects the request
	// with a client-side (4xx) status. Such calls are not retried.
	ErrRequestRejected = errors.New("OCR provider rejected the request")

	// ErrUnknownEngine is returned by the factory for an unrecognized engine
	// name.
	ErrUnknownEngine = errors.New("unknown OCR engine")
)

// OCRError wraps errors with additional context about the provider failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewClovaClient").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewOCRError(op, err, details)
}

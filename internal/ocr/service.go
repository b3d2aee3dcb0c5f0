// Package ocr adapts external text-recognition providers to a common
// fragment-based contract consumed by the verification pipeline.
//
// Three engines are supported:
//   - "clova": Naver Clova OCR general API (HTTP multipart, pre-shared
//     secret header). Default engine.
//   - "vision": Google Cloud Vision document text detection.
//   - "docai": Google Document AI OCR processor.
//
// Required Environment Variables (per engine):
//   - clova: CLOVA_OCR_URL, CLOVA_SECRET_KEY
//   - vision: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
//   - docai: the vision credentials plus GOOGLE_CLOUD_PROJECT,
//     GOOGLE_CLOUD_LOCATION and DOCUMENT_AI_PROCESSOR_ID
//
// Every engine converts the provider response into a flat list of
// fragments: one recognized text span per entry with a four-vertex bounding
// polygon and a confidence in [0,1]. Provider fields with fewer than four
// polygon vertices are dropped, and malformed confidence values default to
// 0.0 instead of failing the response.
package ocr

import (
	"context"
	"time"
)

// Recognizer is the provider contract used by the verification pipeline.
// Implementations carry no per-call mutable state and are safe for
// concurrent use.
type Recognizer interface {
	// Name returns the engine tag recorded in validation results.
	Name() string

	// Recognize runs text recognition on the image at imagePath and returns
	// the recognized fragments in provider order.
	Recognize(ctx context.Context, imagePath string) ([]Fragment, error)

	// RecognizeLines is the cheap probing form: fragments at or above
	// minConfidence, sorted by vertical center, one string per fragment.
	RecognizeLines(ctx context.Context, imagePath string, minConfidence float64) ([]string, error)
}

// EngineConfig selects and configures a provider engine.
type EngineConfig struct {
	// Engine is one of "clova", "vision", "docai".
	Engine string

	// Clova settings, used when Engine is "clova".
	Clova ClovaConfig

	// DocAI settings, used when Engine is "docai".
	DocAI DocAIConfig

	// Timeout bounds each provider call. Zero means the engine default.
	Timeout time.Duration
}

// NewRecognizer constructs the configured engine. Construction fails before
// any network call when the engine's endpoint or credential is unset.
func NewRecognizer(ctx context.Context, cfg EngineConfig) (Recognizer, error) {
	const op = "NewRecognizer"

	switch cfg.Engine {
	case "clova":
		clova := cfg.Clova
		if cfg.Timeout > 0 {
			clova.Timeout = cfg.Timeout
		}
		return NewClovaClient(clova)
	case "vision":
		return NewVisionClient(ctx)
	case "docai":
		return NewDocAIClient(ctx, cfg.DocAI)
	default:
		return nil, NewOCRError(op, ErrUnknownEngine, cfg.Engine)
	}
}

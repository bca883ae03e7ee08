// Package ocr provides text extraction from document images.
//
// The package exposes a single Engine capability and three implementations:
//   - TesseractEngine: local recognition through libtesseract (default)
//   - GoogleVisionEngine: Google Cloud Vision document text detection
//   - DocumentAIEngine: a Google Document AI OCR processor
//
// Every engine recognizes one fixed language per process and makes exactly one
// attempt per image. Callers are expected to have validated file type and size
// before an image reaches an engine; engines still reject empty, undecodable or
// zero-sized images with ErrOCREngine instead of crashing.
//
// Required Environment Variables (Google engines only):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID (Document AI)
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// EngineTesseract selects TesseractEngine.
	EngineTesseract = "tesseract"

	// EngineVision selects GoogleVisionEngine.
	EngineVision = "vision"

	// EngineDocumentAI selects DocumentAIEngine.
	EngineDocumentAI = "documentai"

	// DefaultLanguage is the Tesseract language code used when none is configured.
	DefaultLanguage = "eng"
)

// Engine extracts text from a single image.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// ExtractText recognizes the text in img. It returns an error wrapping
	// ErrOCREngine when the engine cannot process the image.
	ExtractText(ctx context.Context, img Image) (*Result, error)

	// Close releases engine resources such as API clients.
	Close() error
}

// Image is an encoded raster image (PNG or JPEG).
type Image struct {
	// Data holds the encoded image bytes.
	Data []byte

	// MimeType is the declared content type, e.g. "image/png".
	MimeType string
}

// Result contains the text recognized in one image.
type Result struct {
	// Text is the recognized text in reading order.
	Text string `json:"text"`

	// Confidence is the engine's mean confidence (0.0 to 1.0), or 0 when the engine
	// reports none.
	Confidence float32 `json:"confidence"`

	// Engine is the Name of the engine that produced the result.
	Engine string `json:"engine"`

	// Language is the recognition language that was requested.
	Language string `json:"language"`

	// ProcessedAt is the timestamp when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long recognition took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Config selects and configures an engine.
type Config struct {
	// Engine is one of EngineTesseract, EngineVision or EngineDocumentAI.
	Engine string

	// Language is the Tesseract-style language code (e.g. "eng"). Google engines
	// receive the equivalent BCP-47 hint.
	Language string

	// ProjectID, Location and ProcessorID address a Document AI OCR processor.
	ProjectID   string
	Location    string
	ProcessorID string

	// Timeout bounds a single remote recognition call. Zero means no extra bound.
	Timeout time.Duration
}

// NewEngine builds the engine named in cfg.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	const op = "NewEngine"

	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	switch strings.ToLower(cfg.Engine) {
	case "", EngineTesseract:
		return NewTesseractEngine(cfg.Language), nil
	case EngineVision:
		engine, err := NewGoogleVisionEngine(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case EngineDocumentAI:
		engine, err := NewDocumentAIEngine(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, NewOCRError(op, ErrInvalidConfiguration, fmt.Sprintf("unknown OCR engine %q", cfg.Engine))
	}
}

// bcp47 maps Tesseract language codes to the hints Google APIs expect.
var bcp47 = map[string]string{
	"eng": "en",
	"hin": "hi",
	"mar": "mr",
	"guj": "gu",
	"tam": "ta",
	"tel": "te",
	"kan": "kn",
	"ben": "bn",
}

func languageHint(language string) string {
	if hint, ok := bcp47[language]; ok {
		return hint
	}
	return language
}

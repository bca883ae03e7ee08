package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"addressproof/internal/logger"
)

// TesseractEngine implements Engine with a local Tesseract installation.
// A fresh client is created for every image, so the engine is safe for concurrent use.
type TesseractEngine struct {
	language      string
	clientFactory func() *gosseract.Client
	log           zerolog.Logger
}

// NewTesseractEngine creates a Tesseract engine for a single language (e.g. "eng").
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = DefaultLanguage
	}
	return &TesseractEngine{
		language:      language,
		clientFactory: gosseract.NewClient,
		log:           logger.WithComponent("ocr-tesseract"),
	}
}

// Name returns "tesseract".
func (e *TesseractEngine) Name() string { return EngineTesseract }

// ExtractText recognizes the text in img.
func (e *TesseractEngine) ExtractText(ctx context.Context, img Image) (*Result, error) {
	const op = "TesseractExtractText"
	startTime := time.Now()

	if _, err := ValidateImage(img); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := e.clientFactory()
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			e.log.Warn().Err(closeErr).Msg("Failed to close Tesseract client")
		}
	}()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, NewOCRError(op, ErrOCREngine, fmt.Sprintf("set language %q: %v", e.language, err))
	}
	if err := client.SetImageFromBytes(img.Data); err != nil {
		return nil, NewOCRError(op, ErrOCREngine, fmt.Sprintf("set image: %v", err))
	}

	text, err := client.Text()
	if err != nil {
		return nil, NewOCRError(op, ErrOCREngine, fmt.Sprintf("recognize text: %v", err))
	}

	result := &Result{
		Text:        strings.TrimSpace(text),
		Confidence:  wordConfidence(client),
		Engine:      e.Name(),
		Language:    e.language,
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	e.log.Debug().
		Int("text_length", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Tesseract recognition completed")

	return result, nil
}

// Close is a no-op; clients are closed after every image.
func (e *TesseractEngine) Close() error { return nil }

// wordConfidence averages Tesseract's per-word confidence (reported as 0-100).
func wordConfidence(client *gosseract.Client) float32 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return float32(sum / float64(len(boxes)) / 100)
}

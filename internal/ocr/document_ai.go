package ocr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"addressproof/internal/logger"
)

// DocumentAIEngine implements Engine with a Google Document AI OCR processor.
type DocumentAIEngine struct {
	client        *documentai.DocumentProcessorClient
	processorName string
	language      string
	timeout       time.Duration
	log           zerolog.Logger
}

// NewDocumentAIEngine creates an engine for the processor addressed by cfg.
// Requires: ProjectID and ProcessorID; Location defaults to "us".
func NewDocumentAIEngine(ctx context.Context, cfg Config) (*DocumentAIEngine, error) {
	const op = "NewDocumentAIEngine"

	if cfg.ProjectID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}

	clientOptions, err := credentialOptions()
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to load credentials")
	}

	// Processors outside the US multi-region need their regional endpoint
	if cfg.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", cfg.Location))
	}

	return NewDocumentAIEngineWithClient(client, cfg), nil
}

// NewDocumentAIEngineWithClient creates an engine with an explicit client (for testing).
func NewDocumentAIEngineWithClient(client *documentai.DocumentProcessorClient, cfg Config) *DocumentAIEngine {
	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	location := cfg.Location
	if location == "" {
		location = "us"
	}
	return &DocumentAIEngine{
		client:        client,
		processorName: ProcessorName(cfg.ProjectID, location, cfg.ProcessorID),
		language:      language,
		timeout:       cfg.Timeout,
		log:           logger.WithComponent("ocr-documentai"),
	}
}

// ProcessorName builds the full resource name of a Document AI processor.
func ProcessorName(projectID, location, processorID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID)
}

// Name returns "documentai".
func (p *DocumentAIEngine) Name() string { return EngineDocumentAI }

// ExtractText sends img to the OCR processor and returns the document text.
func (p *DocumentAIEngine) ExtractText(ctx context.Context, img Image) (*Result, error) {
	const op = "DocumentAIExtractText"
	startTime := time.Now()

	if _, err := ValidateImage(img); err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}

	req := &documentaipb.ProcessRequest{
		Name: p.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  img.Data,
				MimeType: mimeType,
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{
					LanguageHints: []string{languageHint(p.language)},
				},
			},
		},
	}

	resp, err := p.client.ProcessDocument(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, p.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, NewOCRError(op, ErrOCREngine, "no document in response")
	}

	result := &Result{
		Text:        resp.Document.Text,
		Confidence:  documentConfidence(resp.Document),
		Engine:      p.Name(),
		Language:    p.language,
		ProcessedAt: time.Now(),
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	p.log.Debug().
		Int("text_length", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Document AI recognition completed")

	return result, nil
}

// Close closes the underlying Document AI client.
func (p *DocumentAIEngine) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// handleProcessingError converts Document AI errors into OCR errors with a readable cause.
func (p *DocumentAIEngine) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return NewOCRError(op, ErrOCREngine, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "RESOURCE_EXHAUSTED"):
		return NewOCRError(op, ErrOCREngine, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND"):
		return NewOCRError(op, ErrInvalidConfiguration, fmt.Sprintf("processor not found: %s", p.processorName))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return NewOCRError(op, ErrOCREngine, "image format not supported or corrupted")
	default:
		return NewOCRError(op, ErrOCREngine, fmt.Sprintf("Document AI error: %v", err))
	}
}

func documentConfidence(doc *documentaipb.Document) float32 {
	var sum float32
	var count int
	for _, page := range doc.Pages {
		if page.Layout != nil && page.Layout.Confidence > 0 {
			sum += page.Layout.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float32(count)
}

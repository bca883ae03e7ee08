package ocr

import (
	"context"
	"fmt"
	"os"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"addressproof/internal/logger"
)

// GoogleVisionEngine implements Engine using Google Cloud Vision API.
type GoogleVisionEngine struct {
	client   *vision.ImageAnnotatorClient
	language string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewGoogleVisionEngine creates a Vision engine with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionEngine(ctx context.Context, cfg Config) (*GoogleVisionEngine, error) {
	const op = "NewGoogleVisionEngine"

	opts, err := credentialOptions()
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to load credentials")
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return NewGoogleVisionEngineWithClient(client, cfg), nil
}

// NewGoogleVisionEngineWithClient creates a Vision engine with an explicit client (for testing).
func NewGoogleVisionEngineWithClient(client *vision.ImageAnnotatorClient, cfg Config) *GoogleVisionEngine {
	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	return &GoogleVisionEngine{
		client:   client,
		language: language,
		timeout:  cfg.Timeout,
		log:      logger.WithComponent("ocr-vision"),
	}
}

// Name returns "vision".
func (g *GoogleVisionEngine) Name() string { return EngineVision }

// ExtractText runs document text detection on img.
func (g *GoogleVisionEngine) ExtractText(ctx context.Context, img Image) (*Result, error) {
	const op = "VisionExtractText"
	startTime := time.Now()

	if _, err := ValidateImage(img); err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img.Data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: []string{languageHint(g.language)},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewOCRError(op, ErrOCREngine, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, NewOCRError(op, ErrOCREngine, "no response from Vision API")
	}

	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, NewOCRError(op, ErrOCREngine, fmt.Sprintf("Vision API error: %s", imageResp.Error.Message))
	}

	result := &Result{
		Engine:      g.Name(),
		Language:    g.language,
		ProcessedAt: time.Now(),
	}
	if annotation := imageResp.FullTextAnnotation; annotation != nil {
		result.Text = annotation.Text
		result.Confidence = visionConfidence(annotation)
	}
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	g.log.Debug().
		Int("text_length", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Vision recognition completed")

	return result, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func visionConfidence(annotation *visionpb.TextAnnotation) float32 {
	var sum float32
	var count int
	for _, page := range annotation.Pages {
		if page.Confidence > 0 {
			sum += page.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float32(count)
}

// credentialOptions builds client options from GOOGLE_CREDENTIALS or
// GOOGLE_APPLICATION_CREDENTIALS. No options means application default credentials.
func credentialOptions() ([]option.ClientOption, error) {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}, nil
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		if _, err := os.Stat(credFile); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}
		return []option.ClientOption{option.WithCredentialsFile(credFile)}, nil
	}
	return nil, nil
}

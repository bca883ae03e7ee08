// Package verifier decides whether an uploaded document proves an address inside
// the configured region and, optionally, corroborates the uploader's name.
//
// A verification runs in stages: PDF documents are rasterized, each image goes
// through OCR, the joined text is normalized and finally every catalog location
// and every word of the expected name is looked up with the fuzzy matcher.
// Rasterizer and OCR failures become failed results, never errors; Verify only
// returns an error for a malformed request or an abandoned context.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"addressproof/internal/catalog"
	"addressproof/internal/logger"
	"addressproof/internal/matcher"
	"addressproof/internal/ocr"
	"addressproof/internal/raster"
	"addressproof/internal/textnorm"
)

const (
	// DefaultMinNameWords is the number of name words that must be found when the
	// name has at least that many usable words.
	DefaultMinNameWords = 2

	// minNameWordLength drops initials and stray letters from the expected name.
	minNameWordLength = 2

	// OutcomeValid is reported to the Observer for accepted documents.
	OutcomeValid = "valid"
)

// Observer receives instrumentation events from a Verifier.
type Observer interface {
	ObserveOCR(engine string, duration time.Duration, err error)
	ObserveMatch(strategy string)
	ObserveVerification(outcome string)
}

// Options configures a Verifier. Zero values select the defaults.
type Options struct {
	Catalog      *catalog.Catalog
	Matcher      *matcher.Matcher
	MinNameWords int
	Observer     Observer
}

// Verifier runs verifications. It is safe for concurrent use as long as the
// rasterizer and engine are.
type Verifier struct {
	rasterizer   raster.Rasterizer
	engine       ocr.Engine
	catalog      *catalog.Catalog
	matcher      *matcher.Matcher
	minNameWords int
	observer     Observer
	log          zerolog.Logger
}

// New creates a Verifier backed by the given rasterizer and OCR engine.
func New(rasterizer raster.Rasterizer, engine ocr.Engine, opts Options) *Verifier {
	v := &Verifier{
		rasterizer:   rasterizer,
		engine:       engine,
		catalog:      opts.Catalog,
		matcher:      opts.Matcher,
		minNameWords: opts.MinNameWords,
		observer:     opts.Observer,
		log:          logger.WithComponent("verifier"),
	}
	if v.catalog == nil {
		v.catalog = catalog.Default()
	}
	if v.matcher == nil {
		v.matcher = matcher.New(matcher.DefaultOptions())
	}
	if v.minNameWords < 1 {
		v.minNameWords = DefaultMinNameWords
	}
	return v
}

// Catalog returns the location catalog in use.
func (v *Verifier) Catalog() *catalog.Catalog {
	return v.catalog
}

// Verify runs the full pipeline for req.
func (v *Verifier) Verify(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if len(req.Document()) == 0 {
		return nil, ErrEmptyDocument
	}

	log := v.log.With().
		Str("request_id", req.ID()).
		Str("kind", req.Kind().String()).
		Int("bytes", len(req.Document())).
		Logger()
	log.Debug().Msg("Verification started")

	images, failure, err := v.images(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("verification abandoned: %w", ctxErr)
		}
		log.Warn().Err(err).Str("failure_kind", string(failure)).Msg("Document could not be rasterized")
		return v.finish(log, processingFailure(failure, err)), nil
	}

	raw, confidence, err := v.recognize(ctx, images)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("verification abandoned: %w", ctxErr)
		}
		log.Warn().Err(err).Msg("OCR failed")
		return v.finish(log, processingFailure(FailureOCREngine, err)), nil
	}

	result := v.Evaluate(textnorm.Normalize(raw), req.ExpectedName())
	result.RawExtractedText = raw
	result.OCRConfidence = confidence
	result.PagesProcessed = len(images)

	return v.finish(log, result), nil
}

// Evaluate applies the location and name rules to already normalized text.
func (v *Verifier) Evaluate(text textnorm.Text, expectedName string) *Result {
	result := &Result{
		FoundLocations:     []string{},
		HasAddressKeywords: v.catalog.HasAddressKeywords(text),
	}

	for _, location := range v.catalog.Entries() {
		m := v.matcher.Contains(text.Value, location)
		if !m.Found {
			continue
		}
		result.addLocation(location, m.Strategy)
		v.observeMatch(m.Strategy)
	}
	locationValid := len(result.FoundLocations) > 0

	result.NameChecked = strings.TrimSpace(expectedName) != ""
	result.NameMatched = true
	if result.NameChecked {
		found, usable := v.matchName(text.Value, expectedName)
		result.ExtractedNameFragment = strings.Join(found, " ")
		result.NameMatched = usable > 0 && len(found) >= min(v.minNameWords, usable)
	}

	result.IsValid = locationValid && result.NameMatched
	switch {
	case result.IsValid:
	case !locationValid && !result.NameMatched:
		result.FailureKind = FailureCombinedMismatch
		result.FailureReason = fmt.Sprintf("No valid %s address found and name verification failed. %s",
			v.catalog.Region(), nameFailure(expectedName, result.ExtractedNameFragment))
	case !locationValid:
		result.FailureKind = FailureNoLocation
		result.FailureReason = fmt.Sprintf("No valid %s address found in the document", v.catalog.Region())
	default:
		result.FailureKind = FailureNameMismatch
		result.FailureReason = nameFailure(expectedName, result.ExtractedNameFragment)
	}
	return result
}

// images returns the OCR inputs for req. PDFs contribute their rendered pages,
// image uploads are passed through unchanged.
func (v *Verifier) images(ctx context.Context, req *Request) ([]ocr.Image, FailureKind, error) {
	if req.Kind() != KindPDF {
		return []ocr.Image{{Data: req.Document(), MimeType: imageMimeType(req.ContentType())}}, FailureNone, nil
	}

	pages, err := v.rasterizer.Rasterize(ctx, req.Document())
	if err != nil {
		if errors.Is(err, raster.ErrUnsupportedDocument) {
			return nil, FailureUnsupportedDocument, err
		}
		return nil, FailureRasterization, err
	}
	if len(pages) == 0 {
		return nil, FailureRasterization, raster.ErrRasterization
	}

	images := make([]ocr.Image, 0, len(pages))
	for _, page := range pages {
		data, err := page.PNG()
		if err != nil {
			return nil, FailureRasterization, fmt.Errorf("%w: %v", raster.ErrRasterization, err)
		}
		images = append(images, ocr.Image{Data: data, MimeType: "image/png"})
	}
	return images, FailureNone, nil
}

// recognize runs OCR over images in order and joins the texts with single spaces.
func (v *Verifier) recognize(ctx context.Context, images []ocr.Image) (string, float32, error) {
	texts := make([]string, 0, len(images))
	var confidence float32
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		start := time.Now()
		res, err := v.engine.ExtractText(ctx, img)
		if v.observer != nil {
			v.observer.ObserveOCR(v.engine.Name(), time.Since(start), err)
		}
		if err != nil {
			return "", 0, err
		}
		texts = append(texts, res.Text)
		confidence += res.Confidence
	}
	if len(images) > 0 {
		confidence /= float32(len(images))
	}
	return strings.Join(texts, " "), confidence, nil
}

// matchName returns the expected-name words found in text and how many words
// were long enough to be checked.
func (v *Verifier) matchName(text, expectedName string) ([]string, int) {
	var found []string
	usable := 0
	for _, word := range strings.Fields(textnorm.String(expectedName)) {
		if len(word) < minNameWordLength {
			continue
		}
		usable++
		if m := v.matcher.Contains(text, word); m.Found {
			found = append(found, word)
			v.observeMatch(m.Strategy)
		}
	}
	return found, usable
}

func (v *Verifier) observeMatch(s matcher.Strategy) {
	if v.observer != nil {
		v.observer.ObserveMatch(s.String())
	}
}

func (v *Verifier) finish(log zerolog.Logger, result *Result) *Result {
	outcome := OutcomeValid
	if !result.IsValid {
		outcome = string(result.FailureKind)
	}
	if v.observer != nil {
		v.observer.ObserveVerification(outcome)
	}

	log.Info().
		Bool("valid", result.IsValid).
		Str("outcome", outcome).
		Strs("locations", result.FoundLocations).
		Bool("name_matched", result.NameMatched).
		Int("pages", result.PagesProcessed).
		Msg("Verification completed")
	return result
}

func processingFailure(kind FailureKind, err error) *Result {
	sentinel := err
	switch kind {
	case FailureUnsupportedDocument:
		sentinel = raster.ErrUnsupportedDocument
	case FailureRasterization:
		sentinel = raster.ErrRasterization
	case FailureOCREngine:
		sentinel = ocr.ErrOCREngine
	}

	reason := "document could not be processed: " + sentinel.Error()
	if details := failureDetails(err, sentinel); details != "" {
		reason += " (" + details + ")"
	}
	return &Result{
		FoundLocations: []string{},
		FailureKind:    kind,
		FailureReason:  reason,
	}
}

// failureDetails extracts what the adapter reported beyond the sentinel itself.
func failureDetails(err, sentinel error) string {
	var rErr *raster.Error
	if errors.As(err, &rErr) && rErr.Details != "" {
		return rErr.Details
	}
	var oErr *ocr.OCRError
	if errors.As(err, &oErr) && oErr.Details != "" {
		return oErr.Details
	}
	if err == sentinel {
		return ""
	}
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func nameFailure(expectedName, found string) string {
	if found == "" {
		found = "No matching name"
	}
	return fmt.Sprintf("Name %q not found in document. Found: %s", strings.TrimSpace(expectedName), found)
}

func imageMimeType(contentType string) string {
	if kind, err := KindFromContentType(contentType); err == nil && kind == KindImage {
		ct := strings.ToLower(contentType)
		if strings.Contains(ct, "png") {
			return "image/png"
		}
		return "image/jpeg"
	}
	return contentType
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"addressproof/internal/config"
	"addressproof/internal/ocr"
	"addressproof/internal/raster"
	"addressproof/internal/verifier"
)

// newVerifier wires the configured catalog, rasterizer and OCR engine. The caller
// closes the returned engine.
func newVerifier(ctx context.Context, cfg *config.Config, observer verifier.Observer, log zerolog.Logger) (*verifier.Verifier, ocr.Engine, error) {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		log.Error().
			Err(err).
			Str("file", cfg.LocationCatalogFile).
			Msg("Failed to load location catalog")
		return nil, nil, fmt.Errorf("failed to load location catalog: %w", err)
	}

	engine, err := newEngine(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	v := verifier.New(raster.NewFitzRasterizer(cfg.RasterDPI), engine, verifier.Options{
		Catalog:      cat,
		MinNameWords: cfg.NameMatchMinWords,
		Observer:     observer,
	})

	log.Debug().
		Str("engine", engine.Name()).
		Str("region", cat.Region()).
		Int("locations", cat.Len()).
		Msg("Verifier ready")
	return v, engine, nil
}

// newEngine creates the OCR engine with user-facing errors for missing credentials
func newEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Engine, error) {
	engine, err := ocr.NewEngine(ctx, cfg.GetOCRConfig())
	if err == nil {
		return engine, nil
	}

	log.Error().
		Err(err).
		Str("engine", cfg.OCREngine).
		Msg("Failed to create OCR engine")

	if errors.Is(err, ocr.ErrMissingCredentials) {
		return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
			"2. Export GOOGLE_CREDENTIALS with inline JSON:\n" +
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n" +
			"3. Or set OCR_ENGINE=tesseract to recognize text locally\n\n" +
			"Original error: %w", err)
	}
	return nil, fmt.Errorf("failed to create OCR engine: %w", err)
}

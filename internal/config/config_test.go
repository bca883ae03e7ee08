package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"OCR_ENGINE", "OCR_LANGUAGE", "OCR_TIMEOUT", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
	"DOCUMENT_AI_PROCESSOR_ID", "RASTER_DPI", "NAME_MATCH_MIN_WORDS", "MAX_UPLOAD_BYTES",
	"LOCATION_CATALOG_FILE", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tesseract", cfg.OCREngine)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, 30*time.Second, cfg.OCRTimeout)
	assert.InDelta(t, 300, cfg.RasterDPI, 0)
	assert.Equal(t, 2, cfg.NameMatchMinWords)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "stderr", cfg.LogOutput)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCR_ENGINE", "DocumentAI")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "proc")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "eu")
	t.Setenv("OCR_TIMEOUT", "5s")
	t.Setenv("RASTER_DPI", "150")
	t.Setenv("NAME_MATCH_MIN_WORDS", "3")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	ocrCfg := cfg.GetOCRConfig()
	assert.Equal(t, "documentai", ocrCfg.Engine)
	assert.Equal(t, "proj", ocrCfg.ProjectID)
	assert.Equal(t, "proc", ocrCfg.ProcessorID)
	assert.Equal(t, "eu", ocrCfg.Location)
	assert.Equal(t, 5*time.Second, ocrCfg.Timeout)
	assert.InDelta(t, 150, cfg.RasterDPI, 0)
	assert.Equal(t, 3, cfg.NameMatchMinWords)
	assert.Equal(t, int64(1024), cfg.GetUploadPolicy().MaxBytes)
	assert.Equal(t, "json", cfg.GetLoggerConfig().Format)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		match string
	}{
		{name: "unknown engine", env: map[string]string{"OCR_ENGINE": "abbyy"}, match: "OCR_ENGINE"},
		{name: "documentai without project", env: map[string]string{"OCR_ENGINE": "documentai", "DOCUMENT_AI_PROCESSOR_ID": "p"}, match: "GOOGLE_CLOUD_PROJECT"},
		{name: "documentai without processor", env: map[string]string{"OCR_ENGINE": "documentai", "GOOGLE_CLOUD_PROJECT": "p"}, match: "DOCUMENT_AI_PROCESSOR_ID"},
		{name: "bad dpi", env: map[string]string{"RASTER_DPI": "high"}, match: "RASTER_DPI"},
		{name: "zero dpi", env: map[string]string{"RASTER_DPI": "0"}, match: "RASTER_DPI"},
		{name: "zero name words", env: map[string]string{"NAME_MATCH_MIN_WORDS": "0"}, match: "NAME_MATCH_MIN_WORDS"},
		{name: "bad upload size", env: map[string]string{"MAX_UPLOAD_BYTES": "5MB"}, match: "MAX_UPLOAD_BYTES"},
		{name: "bad timeout", env: map[string]string{"OCR_TIMEOUT": "30"}, match: "OCR_TIMEOUT"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, match: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	c, err := cfg.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, "Vasai region", c.Region())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: Thane\nlocations: [thane, kalyan]\n"), 0o600))
	cfg.LocationCatalogFile = path

	c, err = cfg.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, "Thane", c.Region())
	assert.Equal(t, []string{"thane", "kalyan"}, c.Entries())

	cfg.LocationCatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadCatalog()
	assert.Error(t, err)
}

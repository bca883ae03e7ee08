package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"addressproof/internal/catalog"
	"addressproof/internal/logger"
	"addressproof/internal/ocr"
	"addressproof/internal/raster"
	"addressproof/internal/upload"
	"addressproof/internal/verifier"
)

type Config struct {
	// OCR Configuration
	OCREngine   string
	OCRLanguage string
	OCRTimeout  time.Duration

	// Google Cloud Configuration
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Verification Configuration
	RasterDPI           float64
	NameMatchMinWords   int
	MaxUploadBytes      int64
	LocationCatalogFile string

	// HTTP Configuration
	HTTPAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCREngine:             strings.ToLower(getEnv("OCR_ENGINE", ocr.EngineTesseract)),
		OCRLanguage:           getEnv("OCR_LANGUAGE", ocr.DefaultLanguage),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		LocationCatalogFile:   getEnv("LOCATION_CATALOG_FILE", ""),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.OCRTimeout, err = getEnvDuration("OCR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.RasterDPI, err = getEnvFloat("RASTER_DPI", raster.DefaultDPI); err != nil {
		return nil, err
	}
	if config.NameMatchMinWords, err = getEnvInt("NAME_MATCH_MIN_WORDS", verifier.DefaultMinNameWords); err != nil {
		return nil, err
	}
	if config.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", upload.DefaultMaxBytes); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case ocr.EngineTesseract, ocr.EngineVision:
	case ocr.EngineDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai engine")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be one of %s, %s, %s; got %q",
			ocr.EngineTesseract, ocr.EngineVision, ocr.EngineDocumentAI, c.OCREngine)
	}
	if c.OCRLanguage == "" {
		return fmt.Errorf("OCR_LANGUAGE must not be empty")
	}
	if c.RasterDPI <= 0 {
		return fmt.Errorf("RASTER_DPI must be positive")
	}
	if c.NameMatchMinWords < 1 {
		return fmt.Errorf("NAME_MATCH_MIN_WORDS must be at least 1")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetOCRConfig returns the engine selection for ocr.NewEngine
func (c *Config) GetOCRConfig() ocr.Config {
	return ocr.Config{
		Engine:      c.OCREngine,
		Language:    c.OCRLanguage,
		ProjectID:   c.GoogleCloudProject,
		Location:    c.GoogleCloudLocation,
		ProcessorID: c.DocumentAIProcessorID,
		Timeout:     c.OCRTimeout,
	}
}

// GetUploadPolicy returns the size and type checks for uploads
func (c *Config) GetUploadPolicy() upload.Policy {
	return upload.NewPolicy(c.MaxUploadBytes)
}

// LoadCatalog returns the catalog from LOCATION_CATALOG_FILE, or the built-in one
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.LocationCatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.LocationCatalogFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s: %w", key, err)
	}
	return d, nil
}

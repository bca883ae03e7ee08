package ocr_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressproof/internal/ocr"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	t.Parallel()

	cfg, err := ocr.ValidateImage(ocr.Image{Data: encodePNG(t, 8, 5), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 5, cfg.Height)
}

func TestValidateImageRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ocr.ErrOCREngine},
		{name: "corrupt", data: []byte("\x89PNG\r\n\x1a\nnot really"), want: ocr.ErrOCREngine},
		{name: "text", data: []byte("JOHN MEHTA"), want: ocr.ErrOCREngine},
		{name: "too large", data: make([]byte, ocr.MaxImageBytes+1), want: ocr.ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ocr.ValidateImage(ocr.Image{Data: tt.data})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ocrErr *ocr.OCRError
			require.ErrorAs(t, err, &ocrErr)
			assert.Equal(t, "ValidateImage", ocrErr.Op)
		})
	}
}

func TestTesseractEngineRejectsBadImageBeforeRecognition(t *testing.T) {
	t.Parallel()

	engine := ocr.NewTesseractEngine("")
	assert.Equal(t, "tesseract", engine.Name())

	_, err := engine.ExtractText(context.Background(), ocr.Image{Data: []byte("garbage")})
	assert.ErrorIs(t, err, ocr.ErrOCREngine)
	assert.NoError(t, engine.Close())
}

func TestTesseractEngineCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ocr.NewTesseractEngine("eng").ExtractText(ctx, ocr.Image{Data: encodePNG(t, 4, 4)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := ocr.NewEngine(context.Background(), ocr.Config{})
	require.NoError(t, err)
	assert.Equal(t, ocr.EngineTesseract, engine.Name())

	_, err = ocr.NewEngine(context.Background(), ocr.Config{Engine: "abbyy"})
	assert.ErrorIs(t, err, ocr.ErrInvalidConfiguration)

	_, err = ocr.NewEngine(context.Background(), ocr.Config{Engine: ocr.EngineDocumentAI})
	assert.ErrorIs(t, err, ocr.ErrInvalidConfiguration, "Document AI requires a project and processor")
}

func TestProcessorName(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"projects/p1/locations/eu/processors/abc123",
		ocr.ProcessorName("p1", "eu", "abc123"))
}

func TestOCRError(t *testing.T) {
	t.Parallel()

	err := ocr.NewOCRError("VisionExtractText", ocr.ErrOCREngine, "Vision API error: bad image")
	assert.Equal(t, "ocr: VisionExtractText failed: Vision API error: bad image: OCR engine could not process the image", err.Error())
	assert.True(t, errors.Is(err, ocr.ErrOCREngine))

	wrapped := ocr.WrapOCRError("Outer", err, "ignored")
	assert.Same(t, err, wrapped)
	assert.Nil(t, ocr.WrapOCRError("Outer", nil, ""))
}

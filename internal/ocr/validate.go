package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG uploads
	_ "image/png"  // PNG uploads and rendered PDF pages
)

// MaxImageBytes is the largest image accepted by any engine (20MB, the Vision inline limit).
const MaxImageBytes = 20 * 1024 * 1024

// ValidateImage decodes the image header and rejects data no engine can process.
func ValidateImage(img Image) (image.Config, error) {
	const op = "ValidateImage"

	if len(img.Data) == 0 {
		return image.Config{}, NewOCRError(op, ErrOCREngine, "image data is empty")
	}
	if len(img.Data) > MaxImageBytes {
		return image.Config{}, NewOCRError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(img.Data)))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return image.Config{}, NewOCRError(op, ErrOCREngine, fmt.Sprintf("undecodable image: %v", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, NewOCRError(op, ErrOCREngine, fmt.Sprintf("%s image has zero dimensions", format))
	}
	return cfg, nil
}

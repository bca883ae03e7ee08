// Package upload validates documents at the boundary, before any rasterization
// or OCR work is spent on them.
package upload

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"addressproof/internal/verifier"
)

// DefaultMaxBytes is the largest accepted document (5 MiB).
const DefaultMaxBytes int64 = 5 << 20

var (
	// ErrUnsupportedType is returned for content types other than PDF, JPEG and PNG.
	ErrUnsupportedType = errors.New("only PDF, JPEG and PNG documents are accepted")

	// ErrTooLarge is returned when a document exceeds the size cap.
	ErrTooLarge = errors.New("document exceeds the maximum upload size")

	// ErrEmpty is returned for zero-byte documents.
	ErrEmpty = errors.New("document is empty")
)

// Policy is the set of checks applied to every upload.
type Policy struct {
	MaxBytes int64
}

// DefaultPolicy returns the policy with DefaultMaxBytes.
func DefaultPolicy() Policy {
	return Policy{MaxBytes: DefaultMaxBytes}
}

// NewPolicy returns a policy capped at maxBytes. A non-positive value selects DefaultMaxBytes.
func NewPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Policy{MaxBytes: maxBytes}
}

// Validate checks the declared content type and size of a document.
func (p Policy) Validate(contentType string, size int64) (verifier.DocumentKind, error) {
	kind, err := verifier.KindFromContentType(contentType)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if size <= 0 {
		return 0, ErrEmpty
	}
	if limit := p.Limit(); size > limit {
		return 0, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, size, limit)
	}
	return kind, nil
}

// DetectContentType determines the content type of a local file. The file
// extension decides when it is known; otherwise the leading bytes are sniffed.
func DetectContentType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return http.DetectContentType(data)
}

// Limit returns the effective size cap.
func (p Policy) Limit() int64 {
	if p.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return p.MaxBytes
}

package raster

import (
	"errors"
	"fmt"
)

// Common rasterization errors
var (
	// ErrUnsupportedDocument is returned when the input claims to be a PDF but
	// cannot be parsed as one.
	ErrUnsupportedDocument = errors.New("document is not a readable PDF")

	// ErrRasterization is returned when the PDF parsed but its first page could not
	// be rendered.
	ErrRasterization = errors.New("PDF page could not be rendered")
)

// Error wraps a rasterization failure with the operation that produced it.
type Error struct {
	// Op is the operation that failed (e.g., "Rasterize", "RenderPage").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("raster: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("raster: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// wrap returns err as an *Error unless it already is one.
func wrap(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var rErr *Error
	if errors.As(err, &rErr) {
		return err
	}
	return &Error{Op: op, Err: err, Details: details}
}

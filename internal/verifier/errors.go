package verifier

import "errors"

var (
	// ErrEmptyDocument is returned by NewRequest and Verify for a request without content.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrUnsupportedContentType is returned for content types other than PDF, JPEG and PNG.
	ErrUnsupportedContentType = errors.New("unsupported document content type")

	// ErrNilRequest is returned when Verify is called without a request.
	ErrNilRequest = errors.New("verification request is nil")
)

// FailureKind classifies why a document was not accepted.
type FailureKind string

const (
	// FailureNone marks a valid result.
	FailureNone FailureKind = ""
	// FailureUnsupportedDocument means the upload claimed to be a PDF but could not be parsed.
	FailureUnsupportedDocument FailureKind = "unsupported_document"
	// FailureRasterization means the PDF parsed but its page could not be rendered.
	FailureRasterization FailureKind = "rasterization_error"
	// FailureOCREngine means text recognition failed for an image.
	FailureOCREngine FailureKind = "ocr_engine_error"
	// FailureNoLocation means text was read but no catalog location was found.
	FailureNoLocation FailureKind = "no_location_found"
	// FailureNameMismatch means a location was found but the expected name was not.
	FailureNameMismatch FailureKind = "name_mismatch"
	// FailureCombinedMismatch means neither a location nor the expected name was found.
	FailureCombinedMismatch FailureKind = "combined_mismatch"
)

// IsProcessingFailure reports whether the document could not be read at all, as
// opposed to being read and rejected.
func (k FailureKind) IsProcessingFailure() bool {
	switch k {
	case FailureUnsupportedDocument, FailureRasterization, FailureOCREngine:
		return true
	default:
		return false
	}
}

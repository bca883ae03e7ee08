package verifier

import (
	"strings"

	"addressproof/internal/matcher"
)

// LocationMatch records which catalog entry matched and how.
type LocationMatch struct {
	Location string `json:"location"`
	Strategy string `json:"strategy"`
}

// Result is the outcome of a verification. It is derived only from the OCR text,
// the catalog and the expected name, so identical inputs give identical results.
type Result struct {
	// IsValid is true when a location was found and the name check passed.
	IsValid bool `json:"is_valid"`

	// FoundLocations lists matched catalog entries in catalog order.
	FoundLocations []string `json:"found_locations"`

	// LocationMatches pairs each found location with the strategy that matched it.
	LocationMatches []LocationMatch `json:"location_matches,omitempty"`

	// NameChecked is true when an expected name was supplied.
	NameChecked bool `json:"name_checked"`

	// NameMatched is true when enough name words were found, or when no name was supplied.
	NameMatched bool `json:"name_matched"`

	// ExtractedNameFragment is the found name words joined by single spaces.
	ExtractedNameFragment string `json:"extracted_name,omitempty"`

	// HasAddressKeywords reports whether words like "address" or "flat" appear. It is
	// informational and does not affect IsValid.
	HasAddressKeywords bool `json:"has_address_keywords"`

	// RawExtractedText is the OCR output before normalization.
	RawExtractedText string `json:"raw_text"`

	// OCRConfidence is the mean engine confidence across processed images.
	OCRConfidence float32 `json:"ocr_confidence"`

	// PagesProcessed is the number of images sent to OCR.
	PagesProcessed int `json:"pages_processed"`

	// FailureKind classifies the failure; empty when IsValid.
	FailureKind FailureKind `json:"failure_kind,omitempty"`

	// FailureReason is a human-readable explanation; empty when IsValid.
	FailureReason string `json:"failure_reason,omitempty"`
}

// Message renders the text shown to the uploader.
func (r *Result) Message() string {
	if !r.IsValid {
		if r.FailureReason != "" {
			return r.FailureReason
		}
		return "Verification failed"
	}

	var b strings.Builder
	b.WriteString("Verification successful! Address: ")
	b.WriteString(strings.Join(r.FoundLocations, ", "))
	if r.NameChecked && r.ExtractedNameFragment != "" {
		b.WriteString(", Name: ")
		b.WriteString(r.ExtractedNameFragment)
	}
	return b.String()
}

func (r *Result) addLocation(location string, strategy matcher.Strategy) {
	r.FoundLocations = append(r.FoundLocations, location)
	r.LocationMatches = append(r.LocationMatches, LocationMatch{Location: location, Strategy: strategy.String()})
}

package verifier

import (
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
)

// DocumentKind is the type of an uploaded document, taken from its declared content type.
type DocumentKind int

const (
	// KindImage is a JPEG or PNG upload, recognized directly.
	KindImage DocumentKind = iota
	// KindPDF is a PDF upload, rasterized before recognition.
	KindPDF
)

// String returns "image" or "pdf".
func (k DocumentKind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "image"
}

// KindFromContentType maps a declared MIME type to a DocumentKind. Parameters and
// case are ignored.
func KindFromContentType(contentType string) (DocumentKind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch mediaType {
	case "application/pdf":
		return KindPDF, nil
	case "image/jpeg", "image/jpg", "image/png":
		return KindImage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// Request is one verification call. Its fields are fixed at construction.
type Request struct {
	id           string
	document     []byte
	kind         DocumentKind
	contentType  string
	expectedName string
}

// RequestOption customizes a Request.
type RequestOption func(*Request)

// WithRequestID sets the id used to correlate log lines. By default a random UUID is used.
func WithRequestID(id string) RequestOption {
	return func(r *Request) {
		if id != "" {
			r.id = id
		}
	}
}

// NewRequest validates and builds a verification request. expectedName may be
// empty, in which case only the address is checked.
func NewRequest(document []byte, contentType, expectedName string, opts ...RequestOption) (*Request, error) {
	if len(document) == 0 {
		return nil, ErrEmptyDocument
	}
	kind, err := KindFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	r := &Request{
		id:           uuid.NewString(),
		document:     document,
		kind:         kind,
		contentType:  contentType,
		expectedName: strings.TrimSpace(expectedName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ID returns the correlation id of the request.
func (r *Request) ID() string { return r.id }

// Document returns the uploaded bytes.
func (r *Request) Document() []byte { return r.document }

// Kind returns the document kind.
func (r *Request) Kind() DocumentKind { return r.kind }

// ContentType returns the declared content type.
func (r *Request) ContentType() string { return r.contentType }

// ExpectedName returns the trimmed name the document should corroborate, or "".
func (r *Request) ExpectedName() string { return r.expectedName }

package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        DocumentKind
		wantErr     bool
	}{
		{contentType: "application/pdf", want: KindPDF},
		{contentType: "Application/PDF", want: KindPDF},
		{contentType: "image/jpeg", want: KindImage},
		{contentType: "image/jpg", want: KindImage},
		{contentType: "image/png; name=scan.png", want: KindImage},
		{contentType: "image/gif", wantErr: true},
		{contentType: "text/plain", wantErr: true},
		{contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := KindFromContentType(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedContentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest([]byte("%PDF-1.4"), "application/pdf", "  John Mehta ")
	require.NoError(t, err)

	assert.Equal(t, KindPDF, req.Kind())
	assert.Equal(t, "John Mehta", req.ExpectedName())
	assert.Equal(t, "application/pdf", req.ContentType())
	assert.Equal(t, []byte("%PDF-1.4"), req.Document())
	assert.Len(t, req.ID(), 36)

	other, err := NewRequest([]byte("x"), "image/png", "")
	require.NoError(t, err)
	assert.NotEqual(t, req.ID(), other.ID())
}

func TestNewRequestWithID(t *testing.T) {
	req, err := NewRequest([]byte("x"), "image/png", "", WithRequestID("req-42"))
	require.NoError(t, err)
	assert.Equal(t, "req-42", req.ID())

	req, err = NewRequest([]byte("x"), "image/png", "", WithRequestID(""))
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID())
}

func TestNewRequestRejects(t *testing.T) {
	_, err := NewRequest(nil, "application/pdf", "")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = NewRequest([]byte{}, "image/png", "")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = NewRequest([]byte("x"), "application/zip", "")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestDocumentKindString(t *testing.T) {
	assert.Equal(t, "pdf", KindPDF.String())
	assert.Equal(t, "image", KindImage.String())
}

func TestFailureKindIsProcessingFailure(t *testing.T) {
	for _, k := range []FailureKind{FailureUnsupportedDocument, FailureRasterization, FailureOCREngine} {
		assert.True(t, k.IsProcessingFailure(), k)
	}
	for _, k := range []FailureKind{FailureNone, FailureNoLocation, FailureNameMismatch, FailureCombinedMismatch} {
		assert.False(t, k.IsProcessingFailure(), k)
	}
}

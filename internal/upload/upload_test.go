package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressproof/internal/verifier"
)

func TestValidate(t *testing.T) {
	p := NewPolicy(1024)

	tests := []struct {
		name        string
		contentType string
		size        int64
		want        verifier.DocumentKind
		wantErr     error
	}{
		{name: "pdf", contentType: "application/pdf", size: 10, want: verifier.KindPDF},
		{name: "jpeg", contentType: "image/jpeg", size: 1024, want: verifier.KindImage},
		{name: "jpg alias", contentType: "image/jpg", size: 1, want: verifier.KindImage},
		{name: "png with params", contentType: "IMAGE/PNG; foo=bar", size: 1, want: verifier.KindImage},
		{name: "gif", contentType: "image/gif", size: 10, wantErr: ErrUnsupportedType},
		{name: "no type", contentType: "", size: 10, wantErr: ErrUnsupportedType},
		{name: "empty", contentType: "application/pdf", size: 0, wantErr: ErrEmpty},
		{name: "over cap", contentType: "application/pdf", size: 1025, wantErr: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Validate(tt.contentType, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, int64(5*1024*1024), DefaultPolicy().MaxBytes)
	assert.Equal(t, DefaultMaxBytes, NewPolicy(0).MaxBytes)

	_, err := Policy{}.Validate("image/png", DefaultMaxBytes)
	assert.NoError(t, err)
	_, err = Policy{}.Validate("image/png", DefaultMaxBytes+1)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType("proof.PDF", nil))
	assert.Equal(t, "image/jpeg", DetectContentType("scan.jpeg", nil))
	assert.Equal(t, "image/png", DetectContentType("scan.png", nil))
	assert.Equal(t, "application/pdf", DetectContentType("upload", []byte("%PDF-1.4\n")))
	assert.Equal(t, "image/png", DetectContentType("upload", []byte("\x89PNG\r\n\x1a\n0000")))
	assert.Equal(t, "text/plain; charset=utf-8", DetectContentType("notes.txt", []byte("hello")))
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultMaxBytes, Policy{}.Limit())
	assert.Equal(t, int64(42), NewPolicy(42).Limit())
}

package raster_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressproof/internal/raster"
)

func TestHasPDFHeader(t *testing.T) {
	t.Parallel()

	assert.True(t, raster.HasPDFHeader([]byte("%PDF-1.7\n...")))
	assert.True(t, raster.HasPDFHeader(append([]byte("\xef\xbb\xbfjunk"), []byte("%PDF-1.4")...)))
	assert.False(t, raster.HasPDFHeader([]byte("\x89PNG\r\n\x1a\n")))
	assert.False(t, raster.HasPDFHeader(nil))

	late := make([]byte, 2048)
	copy(late[1500:], "%PDF-1.4")
	assert.False(t, raster.HasPDFHeader(late))
}

func TestFitzRasterizerRejectsNonPDF(t *testing.T) {
	t.Parallel()

	r := raster.NewFitzRasterizer(0)
	pages, err := r.Rasterize(context.Background(), []byte("this is not a pdf"))
	require.Error(t, err)
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, raster.ErrUnsupportedDocument)

	var rErr *raster.Error
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "Rasterize", rErr.Op)
}

func TestFitzRasterizerCorruptPDF(t *testing.T) {
	t.Parallel()

	r := raster.NewFitzRasterizer(72)
	_, err := r.Rasterize(context.Background(), []byte("%PDF-1.4\n%%garbage with no objects\n"))
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, raster.ErrUnsupportedDocument) || errors.Is(err, raster.ErrRasterization),
		"unexpected error: %v", err)
}

func TestFitzRasterizerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := raster.NewFitzRasterizer(0).Rasterize(ctx, []byte("%PDF-1.4\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPage(t *testing.T) {
	t.Parallel()

	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	p := raster.Page{Index: 0, Image: img}

	assert.Equal(t, 4, p.Width())
	assert.Equal(t, 3, p.Height())

	data, err := p.PNG()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])

	empty := raster.Page{Index: 2}
	assert.Zero(t, empty.Width())
	_, err = empty.PNG()
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &raster.Error{Op: "Rasterize", Err: raster.ErrRasterization, Details: "render page 1"}
	assert.Equal(t, "raster: Rasterize failed: render page 1: PDF page could not be rendered", err.Error())
	assert.ErrorIs(t, err, raster.ErrRasterization)
}

// buildPDF writes a minimal PDF with one page per media box, each filled with a
// black rectangle. The xref offsets are exact so MuPDF does not need to repair it.
func buildPDF(t *testing.T, mediaBoxes ...[2]int) []byte {
	t.Helper()

	var objects []string
	kids := ""
	for i := range mediaBoxes {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(mediaBoxes)),
	)
	for i, box := range mediaBoxes {
		content := fmt.Sprintf("0 g 4 4 %d %d re f", box[0]-8, box[1]-8)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R >>", box[0], box[1], 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestFitzRasterizerSinglePage(t *testing.T) {
	t.Parallel()

	pages, err := raster.NewFitzRasterizer(72).Rasterize(context.Background(), buildPDF(t, [2]int{72, 72}))
	require.NoError(t, err)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, 0, p.Index)
	assert.False(t, p.Image.Bounds().Empty())
	assert.InDelta(t, 72, p.Width(), 1)
	assert.InDelta(t, 72, p.Height(), 1)

	data, err := p.PNG()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFitzRasterizerFirstPageOnly(t *testing.T) {
	t.Parallel()

	pdf := buildPDF(t, [2]int{72, 72}, [2]int{144, 36}, [2]int{36, 144})
	pages, err := raster.NewFitzRasterizer(72).Rasterize(context.Background(), pdf)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, 0, pages[0].Index)
	assert.InDelta(t, 72, pages[0].Width(), 1)
	assert.InDelta(t, 72, pages[0].Height(), 1)
}

func TestFitzRasterizerDPI(t *testing.T) {
	t.Parallel()

	pages, err := raster.NewFitzRasterizer(144).Rasterize(context.Background(), buildPDF(t, [2]int{72, 36}))
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.InDelta(t, 144, pages[0].Width(), 1)
	assert.InDelta(t, 72, pages[0].Height(), 1)
}

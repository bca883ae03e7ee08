// Package raster turns PDF uploads into page images for OCR.
//
// Only the first page of a document is rendered. Address proofs (utility bills,
// Aadhaar letters, bank statements) carry the address on page one, and rendering
// further pages would multiply OCR time for every upload. Documents whose address
// appears only on a later page are rejected.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"addressproof/internal/logger"
)

const (
	// DefaultDPI is the render resolution used when none is configured.
	DefaultDPI = 300

	// headerWindow is how far into the file the %PDF marker may appear.
	headerWindow = 1024
)

// Page is a single rendered page. It lives only for the duration of one verification.
type Page struct {
	// Index is the zero-based page number in the source document.
	Index int

	// Image holds the rendered pixels.
	Image image.Image
}

// Width returns the page width in pixels.
func (p Page) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the page height in pixels.
func (p Page) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// PNG encodes the page for OCR engines that take encoded image bytes.
func (p Page) PNG() ([]byte, error) {
	if p.Image == nil {
		return nil, fmt.Errorf("page %d has no image", p.Index+1)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", p.Index+1, err)
	}
	return buf.Bytes(), nil
}

// Rasterizer renders PDF bytes into page images.
type Rasterizer interface {
	// Rasterize returns the rendered pages of pdf. Implementations return at most
	// the first page.
	Rasterize(ctx context.Context, pdf []byte) ([]Page, error)
}

// FitzRasterizer renders pages with MuPDF.
type FitzRasterizer struct {
	dpi float64
	log zerolog.Logger
}

// NewFitzRasterizer creates a MuPDF-backed rasterizer. A non-positive dpi selects DefaultDPI.
func NewFitzRasterizer(dpi float64) *FitzRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzRasterizer{
		dpi: dpi,
		log: logger.WithComponent("raster"),
	}
}

// Rasterize renders the first page of pdf.
func (r *FitzRasterizer) Rasterize(ctx context.Context, pdf []byte) ([]Page, error) {
	const op = "Rasterize"

	if !HasPDFHeader(pdf) {
		return nil, wrap(op, ErrUnsupportedDocument, "missing PDF header")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, wrap(op, ErrUnsupportedDocument, err.Error())
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			r.log.Warn().Err(closeErr).Msg("Failed to close PDF document")
		}
	}()

	pageCount := doc.NumPage()
	if pageCount < 1 {
		return nil, wrap(op, ErrRasterization, "document has no pages")
	}
	if pageCount > 1 {
		r.log.Debug().
			Int("page_count", pageCount).
			Msg("Rendering first page only")
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, wrap(op, ErrRasterization, fmt.Sprintf("render page 1: %v", err))
	}
	if img == nil || img.Bounds().Empty() {
		return nil, wrap(op, ErrRasterization, "page 1 rendered to an empty image")
	}

	r.log.Debug().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Float64("dpi", r.dpi).
		Msg("Rendered PDF page")

	return []Page{{Index: 0, Image: img}}, nil
}

// HasPDFHeader reports whether data carries a %PDF marker near its start.
func HasPDFHeader(data []byte) bool {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}

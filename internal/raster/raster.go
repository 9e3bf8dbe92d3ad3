// Package raster renders PDF pages to PNG images for OCR.
package raster

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	BackendMuPDF = "mupdf"
	BackendVips  = "vips"
)

var (
	ErrNoPages        = errors.New("no pages rendered from PDF")
	ErrInvalidDPI     = errors.New("invalid rasterization DPI")
	ErrUnknownBackend = errors.New("unknown rasterizer backend")
)

// MaxDPI bounds rendering resolution to keep page bitmaps in memory limits
const MaxDPI = 600

// PageFunc receives each rendered page. Pages are numbered from 1.
// Returning an error stops rendering.
type PageFunc func(page int, png []byte) error

// Rasterizer renders every page of a PDF at the given resolution
type Rasterizer interface {
	Name() string
	Render(ctx context.Context, pdf []byte, dpi int, fn PageFunc) error
}

// New creates a rasterizer for the named backend
func New(backend string, maxPages int) (Rasterizer, error) {
	switch strings.ToLower(backend) {
	case BackendMuPDF, "":
		return NewMuPDFRasterizer(maxPages), nil
	case BackendVips:
		return NewVipsRasterizer(maxPages), nil
	default:
		return nil, fmt.Errorf("%w: %s (valid options: %s, %s)", ErrUnknownBackend, backend, BackendMuPDF, BackendVips)
	}
}

// ValidateDPI checks that a resolution can be rendered
func ValidateDPI(dpi int) error {
	if dpi <= 0 || dpi > MaxDPI {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidDPI, dpi, MaxDPI)
	}
	return nil
}

func pageLimit(numPages, maxPages int) int {
	if maxPages > 0 && numPages > maxPages {
		return maxPages
	}
	return numPages
}

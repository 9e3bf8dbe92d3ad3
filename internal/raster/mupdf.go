package raster

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// MuPDFRasterizer renders pages with MuPDF
type MuPDFRasterizer struct {
	maxPages int
}

func NewMuPDFRasterizer(maxPages int) *MuPDFRasterizer {
	return &MuPDFRasterizer{maxPages: maxPages}
}

func (r *MuPDFRasterizer) Name() string {
	return BackendMuPDF
}

func (r *MuPDFRasterizer) Render(ctx context.Context, pdf []byte, dpi int, fn PageFunc) error {
	if err := ValidateDPI(dpi); err != nil {
		return err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	numPages := pageLimit(total, r.maxPages)
	if numPages == 0 {
		return ErrNoPages
	}
	if numPages < total {
		log.Warn().Int("pages", total).Int("max_pages", numPages).Msg("PDF exceeds page limit, rendering first pages only")
	}

	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		png, err := doc.ImagePNG(i, float64(dpi))
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		if err := fn(i+1, png); err != nil {
			return err
		}
	}
	return nil
}

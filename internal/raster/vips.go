package raster

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/rs/zerolog/log"
)

// InitVips initializes the vips library. Call this once at application startup.
func InitVips() {
	vips.Startup(nil)
}

// ShutdownVips shuts down the vips library. Call this at application shutdown.
func ShutdownVips() {
	vips.Shutdown()
}

// VipsRasterizer renders pages through libvips' PDF loader
type VipsRasterizer struct {
	maxPages int
}

func NewVipsRasterizer(maxPages int) *VipsRasterizer {
	return &VipsRasterizer{maxPages: maxPages}
}

func (r *VipsRasterizer) Name() string {
	return BackendVips
}

func (r *VipsRasterizer) Render(ctx context.Context, pdf []byte, dpi int, fn PageFunc) error {
	if err := ValidateDPI(dpi); err != nil {
		return err
	}

	first, err := loadPage(pdf, 0, dpi)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	// n-pages metadata holds the page count of the whole document
	total := first.Pages()
	numPages := pageLimit(total, r.maxPages)
	if numPages == 0 {
		first.Close()
		return ErrNoPages
	}
	if numPages < total {
		log.Warn().Int("pages", total).Int("max_pages", numPages).Msg("PDF exceeds page limit, rendering first pages only")
	}

	for i := 0; i < numPages; i++ {
		image := first
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			image, err = loadPage(pdf, i, dpi)
			if err != nil {
				return fmt.Errorf("failed to load page %d: %w", i+1, err)
			}
		}

		png, _, err := image.ExportPng(vips.NewPngExportParams())
		image.Close()
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		if err := fn(i+1, png); err != nil {
			return err
		}
	}
	return nil
}

func loadPage(pdf []byte, page, dpi int) (*vips.ImageRef, error) {
	params := vips.NewImportParams()
	params.Page.Set(page)
	params.NumPages.Set(1)
	params.Density.Set(dpi)
	return vips.LoadImageFromBuffer(pdf, params)
}

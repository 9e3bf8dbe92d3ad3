package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/raster"
	"github.com/rs/zerolog/log"
)

// PageStrategy rasterizes every page and runs an OCR engine over it. The
// first page that fails aborts the whole strategy.
type PageStrategy struct {
	method     extract.Method
	rasterizer raster.Rasterizer
	engine     Engine
	dpi        int
}

// NewPageStrategy creates an OCR strategy reported under the given method
func NewPageStrategy(method extract.Method, rasterizer raster.Rasterizer, engine Engine, dpi int) *PageStrategy {
	return &PageStrategy{
		method:     method,
		rasterizer: rasterizer,
		engine:     engine,
		dpi:        dpi,
	}
}

func (s *PageStrategy) Method() extract.Method {
	return s.method
}

// Engine returns the OCR engine used by the strategy
func (s *PageStrategy) Engine() Engine {
	return s.engine
}

// Rasterizer returns the page renderer used by the strategy
func (s *PageStrategy) Rasterizer() raster.Rasterizer {
	return s.rasterizer
}

// DPI returns the rendering resolution
func (s *PageStrategy) DPI() int {
	return s.dpi
}

// Extract returns the recognized text of all pages, each preceded by a
// "--- Page N (engine) ---" marker
func (s *PageStrategy) Extract(ctx context.Context, pdf []byte) (*extract.Output, error) {
	if !s.engine.IsAvailable() {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, s.engine.Name())
	}

	var text strings.Builder
	var pages []string

	err := s.rasterizer.Render(ctx, pdf, s.dpi, func(page int, png []byte) error {
		recognized, err := s.engine.Recognize(ctx, png)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		recognized = strings.TrimSpace(extract.SanitizeText(recognized))
		pages = append(pages, recognized)

		fmt.Fprintf(&text, "\n%s\n%s\n", PageMarker(page, s.engine.Name()), recognized)

		log.Debug().
			Str("engine", s.engine.Name()).
			Int("page", page).
			Int("png_bytes", len(png)).
			Int("text_length", len(recognized)).
			Msg("Page recognized")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, extract.ErrNoPages
	}

	return &extract.Output{
		Text:  strings.TrimSpace(text.String()),
		Pages: pages,
	}, nil
}

// PageMarker returns the separator written before each OCR'd page
func PageMarker(page int, engine string) string {
	return fmt.Sprintf("--- Page %d (%s) ---", page, engine)
}

package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// TextLayerStrategy reads the embedded text layer without rasterizing
type TextLayerStrategy struct {
	maxPages int
}

// NewTextLayerStrategy creates a text layer strategy. maxPages of 0 reads
// every page.
func NewTextLayerStrategy(maxPages int) *TextLayerStrategy {
	return &TextLayerStrategy{maxPages: maxPages}
}

func (s *TextLayerStrategy) Method() Method {
	return MethodTextLayer
}

// Extract reads every page's plain text. Pages that fail to decode are
// skipped; a document that cannot be opened is an error.
func (s *TextLayerStrategy) Extract(ctx context.Context, data []byte) (*Output, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages := reader.NumPage()
	if s.maxPages > 0 && numPages > s.maxPages {
		numPages = s.maxPages
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Int("page", i).Msg("Failed to read page text layer, skipping")
			pages = append(pages, "")
			continue
		}
		pages = append(pages, SanitizeText(content))
	}

	var text strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		text.WriteString(p)
		text.WriteString("\n\n")
	}

	return &Output{
		Text:  strings.TrimSpace(text.String()),
		Pages: pages,
	}, nil
}

// SanitizeText removes null bytes and control characters other than tab,
// newline and carriage return
func SanitizeText(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	for _, r := range text {
		if r == '\t' || r == '\n' || r == '\r' || (r >= 0x20 && r != 0x7F) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

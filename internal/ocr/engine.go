// Package ocr provides the OCR engines and the page-by-page OCR strategy
// used as the fast and accurate fallbacks of the extraction cascade.
package ocr

import (
	"context"
	"errors"
	"strings"
)

// ErrEngineUnavailable is returned when an engine cannot run in this build
// or on this machine
var ErrEngineUnavailable = errors.New("OCR engine not available")

// DefaultLanguages are the Tesseract language codes used when none are configured
var DefaultLanguages = []string{"hin", "eng"}

// Engine recognizes text in a single rasterized page image
type Engine interface {
	// Name returns the engine name used in logs and page markers
	Name() string

	// Recognize returns the text found in a PNG image
	Recognize(ctx context.Context, image []byte) (string, error)

	// IsAvailable reports whether the engine can run
	IsAvailable() bool

	// Close releases the engine's resources
	Close() error
}

// EngineConfig configures a Tesseract-backed engine
type EngineConfig struct {
	Languages   []string
	TessdataDir string
	PSM         int // page segmentation mode, 0 = engine default
	OEM         int // OCR engine mode, 0 = engine default

	// Binary is the tesseract executable, used by the CLI engine only
	Binary string
}

func (c EngineConfig) languageString() string {
	langs := c.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return strings.Join(langs, "+")
}

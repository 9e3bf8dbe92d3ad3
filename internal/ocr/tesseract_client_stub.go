//go:build !cgo || !ocr

package ocr

import (
	"context"
	"fmt"
)

// ClientEngine is a stub for builds without libtesseract
type ClientEngine struct{}

// NewClientEngine creates a stub engine that reports unavailability
func NewClientEngine(cfg EngineConfig) (*ClientEngine, error) {
	return &ClientEngine{}, nil
}

func (e *ClientEngine) Name() string {
	return "Tesseract Fast (unavailable)"
}

func (e *ClientEngine) IsAvailable() bool {
	return false
}

func (e *ClientEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	return "", fmt.Errorf("%w: built without Tesseract support", ErrEngineUnavailable)
}

func (e *ClientEngine) Close() error {
	return nil
}

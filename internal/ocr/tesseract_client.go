//go:build cgo && ocr

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// ClientEngine runs Tesseract in-process through libtesseract. It owns a
// single client; calls are serialized because the client is not safe for
// concurrent use.
type ClientEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
	cfg    EngineConfig
}

// NewClientEngine creates and configures the in-process engine
func NewClientEngine(cfg EngineConfig) (*ClientEngine, error) {
	client := gosseract.NewClient()

	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}

	if err := client.SetLanguage(cfg.languageString()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	log.Debug().
		Str("version", gosseract.Version()).
		Str("languages", cfg.languageString()).
		Msg("In-process Tesseract engine initialized")

	return &ClientEngine{client: client, cfg: cfg}, nil
}

func (e *ClientEngine) Name() string {
	return "Tesseract Fast"
}

func (e *ClientEngine) IsAvailable() bool {
	return true
}

func (e *ClientEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return "", fmt.Errorf("%w: engine closed", ErrEngineUnavailable)
	}
	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

func (e *ClientEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

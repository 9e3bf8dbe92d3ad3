package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// CLIEngine runs the tesseract binary once per page image. It is the slower
// but more accurate engine, especially for Devanagari script.
type CLIEngine struct {
	cfg       EngineConfig
	runner    Runner
	binary    string
	available bool
}

// NewCLIEngine resolves the tesseract binary and creates an engine. A
// missing binary does not fail construction; the engine reports itself
// unavailable instead.
func NewCLIEngine(cfg EngineConfig, runner Runner) *CLIEngine {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}

	binary, err := exec.LookPath(cfg.Binary)
	available := err == nil
	if !available {
		binary = cfg.Binary
		log.Warn().Str("binary", cfg.Binary).Msg("Tesseract binary not found, accurate OCR will be unavailable")
	} else {
		log.Debug().
			Str("tesseract_path", binary).
			Str("languages", cfg.languageString()).
			Msg("Tesseract CLI engine initialized")
	}

	return &CLIEngine{
		cfg:       cfg,
		runner:    runner,
		binary:    binary,
		available: available,
	}
}

func (e *CLIEngine) Name() string {
	return "Tesseract"
}

func (e *CLIEngine) IsAvailable() bool {
	return e.available
}

// Recognize pipes the image to `tesseract stdin stdout`
func (e *CLIEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if !e.available {
		return "", fmt.Errorf("%w: tesseract binary %q not found", ErrEngineUnavailable, e.cfg.Binary)
	}

	out, errb, err := e.runner.Run(ctx, image, e.binary, e.args()...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

func (e *CLIEngine) args() []string {
	args := []string{"stdin", "stdout", "-l", e.cfg.languageString()}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *CLIEngine) Close() error {
	return nil
}

// Package pipeline assembles the extraction cascade, its OCR engines and the
// optional result cache from configuration.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/fluxbase-eu/pdfextract/internal/cache"
	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/fluxbase-eu/pdfextract/internal/ocr"
	"github.com/fluxbase-eu/pdfextract/internal/raster"
	"github.com/rs/zerolog/log"
)

// EngineStatus describes one OCR fallback for health and CLI output
type EngineStatus struct {
	Method     extract.Method `json:"method" yaml:"method"`
	Engine     string         `json:"engine" yaml:"engine"`
	Rasterizer string         `json:"rasterizer" yaml:"rasterizer"`
	DPI        int            `json:"dpi" yaml:"dpi"`
	Available  bool           `json:"available" yaml:"available"`
}

// Pipeline owns everything needed to serve extraction requests
type Pipeline struct {
	Extractor extract.Extractor
	Cascade   *extract.Cascade

	fast     *ocr.PageStrategy
	accurate *ocr.PageStrategy
	store    cache.Store
}

// Options holds collaborators that tests or callers may replace
type Options struct {
	Metrics *observability.Metrics
	Runner  ocr.Runner
	Store   cache.Store
}

// New builds the pipeline described by cfg. The caller must Close it.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	fastRaster, err := raster.New(cfg.OCR.Fast.Rasterizer, cfg.Extraction.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("fast OCR: %w", err)
	}
	accurateRaster, err := raster.New(cfg.OCR.Accurate.Rasterizer, cfg.Extraction.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("accurate OCR: %w", err)
	}

	fastEngine, err := ocr.NewClientEngine(engineConfig(&cfg.OCR, &cfg.OCR.Fast))
	if err != nil {
		return nil, fmt.Errorf("fast OCR: %w", err)
	}
	if !fastEngine.IsAvailable() {
		log.Warn().Msg("In-process Tesseract unavailable, scanned documents will fail at the fast OCR step")
	}
	accurateEngine := ocr.NewCLIEngine(engineConfig(&cfg.OCR, &cfg.OCR.Accurate), opts.Runner)

	p := &Pipeline{
		fast:     ocr.NewPageStrategy(extract.MethodFastOCR, fastRaster, fastEngine, cfg.OCR.Fast.DPI),
		accurate: ocr.NewPageStrategy(extract.MethodAccurateOCR, accurateRaster, accurateEngine, cfg.OCR.Accurate.DPI),
	}

	cascadeOpts := []extract.Option{
		extract.WithMinTextLength(cfg.Extraction.MinTextLength),
		extract.WithMaxTextLength(cfg.Extraction.MaxTextLength),
		extract.WithTimeout(cfg.Extraction.Timeout),
	}
	if opts.Metrics != nil {
		metrics := opts.Metrics
		cascadeOpts = append(cascadeOpts, extract.WithAttemptHook(func(a extract.Attempt) {
			metrics.RecordStrategy(string(a.Method), a.Length, a.Duration, a.Err)
		}))
	}

	p.Cascade = extract.NewCascade(
		extract.NewTextLayerStrategy(cfg.Extraction.MaxPages),
		p.fast,
		p.accurate,
		cascadeOpts...,
	)
	p.Extractor = p.Cascade

	if cfg.Cache.Enabled {
		store := opts.Store
		if store == nil {
			store, err = cache.NewStore(&cfg.Cache)
			if err != nil {
				_ = p.Close()
				return nil, fmt.Errorf("failed to create result cache: %w", err)
			}
		}
		p.store = store

		var recorder cache.LookupRecorder
		if opts.Metrics != nil {
			recorder = opts.Metrics
		}
		p.Extractor = cache.NewExtractor(p.Cascade, store, cfg.Cache.TTL, Fingerprint(cfg), recorder)
	}

	log.Info().
		Int("min_text_length", cfg.Extraction.MinTextLength).
		Int("max_text_length", cfg.Extraction.MaxTextLength).
		Str("languages", strings.Join(cfg.OCR.Languages, "+")).
		Str("fast_engine", fastEngine.Name()).
		Bool("fast_available", fastEngine.IsAvailable()).
		Bool("accurate_available", accurateEngine.IsAvailable()).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Extraction pipeline ready")

	return p, nil
}

func engineConfig(oc *config.OCRConfig, ec *config.EngineConfig) ocr.EngineConfig {
	return ocr.EngineConfig{
		Languages:   oc.Languages,
		TessdataDir: oc.TessdataDir,
		PSM:         ec.PSM,
		OEM:         ec.OEM,
		Binary:      ec.Binary,
	}
}

// Fingerprint summarizes every setting that changes extraction output
func Fingerprint(cfg *config.Config) string {
	return fmt.Sprintf("v1|min=%d|max=%d|pages=%d|lang=%s|fast=%s@%d/%d/%d|accurate=%s@%d/%d/%d",
		cfg.Extraction.MinTextLength,
		cfg.Extraction.MaxTextLength,
		cfg.Extraction.MaxPages,
		strings.Join(cfg.OCR.Languages, "+"),
		cfg.OCR.Fast.Rasterizer, cfg.OCR.Fast.DPI, cfg.OCR.Fast.PSM, cfg.OCR.Fast.OEM,
		cfg.OCR.Accurate.Rasterizer, cfg.OCR.Accurate.DPI, cfg.OCR.Accurate.PSM, cfg.OCR.Accurate.OEM,
	)
}

// Engines reports the OCR fallbacks in cascade order
func (p *Pipeline) Engines() []EngineStatus {
	statuses := make([]EngineStatus, 0, 2)
	for _, s := range []*ocr.PageStrategy{p.fast, p.accurate} {
		if s == nil {
			continue
		}
		statuses = append(statuses, EngineStatus{
			Method:     s.Method(),
			Engine:     s.Engine().Name(),
			Rasterizer: s.Rasterizer().Name(),
			DPI:        s.DPI(),
			Available:  s.Engine().IsAvailable(),
		})
	}
	return statuses
}

// CacheEnabled reports whether results are cached
func (p *Pipeline) CacheEnabled() bool {
	return p.store != nil
}

// Close releases the OCR engines and the cache store
func (p *Pipeline) Close() error {
	var errs []string
	for _, s := range []*ocr.PageStrategy{p.fast, p.accurate} {
		if s == nil {
			continue
		}
		if err := s.Engine().Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close pipeline: %s", strings.Join(errs, "; "))
	}
	return nil
}

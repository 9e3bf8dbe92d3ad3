package api

import (
	"context"
	"fmt"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/fluxbase-eu/pdfextract/internal/pipeline"
	"github.com/fluxbase-eu/pdfextract/internal/raster"
	"github.com/rs/zerolog/log"
)

// Serve builds the pipeline and HTTP server from cfg and runs until ctx is
// cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	raster.InitVips()
	defer raster.ShutdownVips()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// Build the extraction cascade
	p, err := pipeline.New(cfg, pipeline.Options{Metrics: metrics})
	if err != nil {
		return fmt.Errorf("failed to build extraction pipeline: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to release extraction pipeline")
		}
	}()

	for _, e := range p.Engines() {
		log.Info().
			Str("method", string(e.Method)).
			Str("engine", e.Engine).
			Str("rasterizer", e.Rasterizer).
			Int("dpi", e.DPI).
			Bool("available", e.Available).
			Msg("OCR fallback configured")
	}

	server := NewServer(cfg, p, metrics)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Starting pdfextract server")
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown lets in-flight OCR finish up to the write timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited")
	return nil
}

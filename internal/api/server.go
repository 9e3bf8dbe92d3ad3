package api

import (
	"context"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/middleware"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/fluxbase-eu/pdfextract/internal/pipeline"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

// Server represents the HTTP server
type Server struct {
	app            *fiber.App
	config         *config.Config
	pipeline       *pipeline.Pipeline
	tracer         *observability.Tracer
	metrics        *observability.Metrics
	extractHandler *ExtractHandler
	startTime      time.Time
}

// NewServer creates a new HTTP server around an extraction pipeline.
// metrics may be nil when metrics are disabled.
func NewServer(cfg *config.Config, p *pipeline.Pipeline, metrics *observability.Metrics) *Server {
	// Create Fiber app with config
	app := fiber.New(fiber.Config{
		ServerHeader:          "pdfextract",
		AppName:               "pdfextract " + observability.ServiceVersion,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          customErrorHandler,
		Prefork:               false,
	})

	// Initialize OpenTelemetry tracer
	tracer, err := observability.NewTracer(context.Background(), cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize OpenTelemetry tracer, tracing will be disabled")
	}

	server := &Server{
		app:            app,
		config:         cfg,
		pipeline:       p,
		tracer:         tracer,
		metrics:        metrics,
		extractHandler: NewExtractHandler(p.Extractor, metrics),
		startTime:      time.Now(),
	}

	server.setupMiddlewares()
	server.setupRoutes()

	return server
}

// setupMiddlewares sets up global middlewares
func (s *Server) setupMiddlewares() {
	// Request ID middleware - must be first for tracing
	log.Debug().Msg("Adding requestid middleware")
	s.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// OpenTelemetry tracing middleware
	if s.config.Tracing.Enabled && s.tracer != nil && s.tracer.IsEnabled() {
		log.Debug().Msg("Adding OpenTelemetry tracing middleware")
		s.app.Use(middleware.TracingMiddleware(middleware.TracingConfig{
			Enabled:     true,
			ServiceName: s.config.Tracing.ServiceName,
			SkipPaths:   []string{"/health", s.config.Metrics.Path},
		}))
	}

	if s.metrics != nil {
		s.app.Use(s.metrics.MetricsMiddleware())
	}

	log.Debug().Msg("Adding security headers middleware")
	s.app.Use(middleware.SecurityHeaders())

	s.app.Use(middleware.StructuredLogger(middleware.StructuredLoggerConfig{
		SkipPaths:            []string{"/health", s.config.Metrics.Path},
		SlowRequestThreshold: 30 * time.Second,
	}))
	if s.config.Debug {
		s.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
		}))
	}

	// Recover middleware - a panic must never take the process down
	log.Debug().Msg("Adding recover middleware")
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: s.config.Debug,
	}))

	// Compression middleware
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelDefault,
	}))
}

// setupRoutes sets up all routes
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	if s.metrics != nil && s.config.Metrics.Enabled {
		s.app.Get(s.config.Metrics.Path, func(c *fiber.Ctx) error {
			s.metrics.UpdateUptime(s.startTime)
			return c.Next()
		}, s.metrics.Handler())
	}

	extractChain := []fiber.Handler{}
	if s.config.Security.EnableRateLimit {
		log.Info().
			Int("max", s.config.Security.RateLimitMax).
			Dur("window", s.config.Security.RateLimitWindow).
			Msg("Enabling extraction rate limiter")
		extractChain = append(extractChain, middleware.ExtractionLimiter(
			s.config.Security.RateLimitMax,
			s.config.Security.RateLimitWindow,
		))
	}
	extractChain = append(extractChain, s.extractHandler.HandleExtract)

	s.app.Post("/extract_text", extractChain...)

	v1 := s.app.Group("/api/v1")
	v1.Post("/extract", extractChain...)
	v1.Get("/engines", s.handleEngines)

	// 404 handler
	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "error",
			"message": "Not Found",
			"path":    c.Path(),
		})
	})
}

// handleHealth reports OCR engine availability and system memory
func (s *Server) handleHealth(c *fiber.Ctx) error {
	engines := s.pipeline.Engines()

	services := fiber.Map{
		"text_layer": true,
		"cache":      s.pipeline.CacheEnabled(),
	}
	anyOCR := len(engines) == 0
	for _, e := range engines {
		switch e.Method {
		case extract.MethodFastOCR:
			services["fast_ocr"] = e.Available
		case extract.MethodAccurateOCR:
			services["accurate_ocr"] = e.Available
		}
		anyOCR = anyOCR || e.Available
	}

	// Text-layer PDFs are still served without OCR
	status := "ok"
	if !anyOCR {
		status = "degraded"
	}

	body := fiber.Map{
		"status":    status,
		"version":   observability.ServiceVersion,
		"services":  services,
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		body["memory"] = fiber.Map{
			"total_mb":     vmStat.Total / 1024 / 1024,
			"available_mb": vmStat.Available / 1024 / 1024,
			"used_percent": vmStat.UsedPercent,
		}
	} else {
		log.Debug().Err(err).Msg("Failed to read system memory")
	}

	return c.JSON(body)
}

// handleEngines lists the OCR fallbacks in cascade order
func (s *Server) handleEngines(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"min_text_length": s.config.Extraction.MinTextLength,
		"max_text_length": s.config.Extraction.MaxTextLength,
		"languages":       s.config.OCR.Languages,
		"engines":         s.pipeline.Engines(),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.app.Listen(s.config.Server.Address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	err := s.app.ShutdownWithContext(ctx)

	// Shutdown OpenTelemetry tracer (flush remaining spans)
	if s.tracer != nil {
		if terr := s.tracer.Shutdown(ctx); terr != nil {
			log.Warn().Err(terr).Msg("Failed to shutdown OpenTelemetry tracer")
		}
	}

	return err
}

// App returns the underlying Fiber app instance for testing
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler handles errors globally. Every error leaves the server
// in the same {status, message} shape as a failed extraction.
func customErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500 status code
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("Server error")
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

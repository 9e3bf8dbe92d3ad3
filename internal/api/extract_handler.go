package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/middleware"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// FormField is the multipart field carrying the uploaded PDF
const FormField = "file"

var errMissingFile = errors.New(`no file uploaded: multipart form field "file" is required`)

// ExtractHandler serves text extraction requests
type ExtractHandler struct {
	extractor extract.Extractor
	metrics   *observability.Metrics
}

// NewExtractHandler creates a handler around an extractor. metrics may be nil.
func NewExtractHandler(extractor extract.Extractor, metrics *observability.Metrics) *ExtractHandler {
	return &ExtractHandler{
		extractor: extractor,
		metrics:   metrics,
	}
}

// HandleExtract extracts text from the uploaded PDF.
//
// A request without a file is rejected with 400. Every extraction failure,
// whatever its cause, is reported with 200 and the error shape.
func (h *ExtractHandler) HandleExtract(c *fiber.Ctx) error {
	header, err := c.FormFile(FormField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(extract.NewErrorResponse(errMissingFile))
	}

	data, err := readUpload(header)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(extract.NewErrorResponse(err))
	}

	requestID := toString(c.Locals("requestid"))
	start := time.Now()

	result, err := h.extractor.Extract(c.UserContext(), data)
	if err != nil {
		h.record("", time.Since(start), err)

		event := log.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("filename", header.Filename).
			Int("bytes", len(data))
		if method, ok := extract.FailedMethod(err); ok {
			event = event.Str("failed_method", string(method))
		}
		event.Msg("Extraction failed")

		middleware.SetSpanError(c, err)
		return c.JSON(extract.NewErrorResponse(err))
	}

	h.record(string(result.Method), time.Since(start), nil)
	c.Locals(middleware.LocalsExtractMethod, string(result.Method))

	log.Info().
		Str("request_id", requestID).
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Str("method", string(result.Method)).
		Int("pages", result.Pages).
		Bool("truncated", result.Truncated).
		Dur("duration", result.Duration).
		Msg("Extraction completed")

	return c.JSON(extract.NewSuccessResponse(result))
}

func (h *ExtractHandler) record(method string, duration time.Duration, err error) {
	if h.metrics != nil {
		h.metrics.RecordExtraction(method, duration, err)
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

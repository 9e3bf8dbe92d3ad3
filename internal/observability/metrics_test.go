package observability

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	testCases := []struct {
		status   int
		expected string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{413, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{100, "unknown"},
		{0, "unknown"},
		{600, "5xx"}, // >= 500 returns 5xx
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, statusClass(tc.status))
		})
	}
}

func TestNormalizePath(t *testing.T) {
	t.Run("returns path unchanged for short paths", func(t *testing.T) {
		assert.Equal(t, "/extract_text", normalizePath("/extract_text"))
	})

	t.Run("returns long_path for paths over 50 chars", func(t *testing.T) {
		longPath := "/api/v1/very/long/path/that/exceeds/fifty/characters/limit/here"
		assert.Equal(t, "long_path", normalizePath(longPath))
	})

	t.Run("handles empty path", func(t *testing.T) {
		assert.Equal(t, "", normalizePath(""))
	})
}

func TestMetrics_RecordExtraction(t *testing.T) {
	m := NewMetrics()

	m.RecordExtraction("Text-based", 120*time.Millisecond, nil)
	m.RecordExtraction("Text-based", 80*time.Millisecond, nil)
	m.RecordExtraction("", time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.extractionsTotal.WithLabelValues("Text-based", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionsTotal.WithLabelValues("none", "error")))
}

func TestMetrics_RecordStrategy(t *testing.T) {
	m := NewMetrics()

	m.RecordStrategy("OCR - Fast", 12, time.Second, nil)
	m.RecordStrategy("OCR - Fast", 0, time.Second, errors.New("engine failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategyTotal.WithLabelValues("OCR - Fast", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategyTotal.WithLabelValues("OCR - Fast", "error")))
	// failed attempts do not observe a character count
	assert.Equal(t, 1, testutil.CollectAndCount(m.extractedChars))
}

func TestMetrics_RecordCacheLookup(t *testing.T) {
	m := NewMetrics()

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("miss")))
}

func TestMetrics_UpdateUptime(t *testing.T) {
	m := NewMetrics()
	m.UpdateUptime(time.Now().Add(-time.Minute))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.systemUptime), 60.0)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		a := NewMetrics()
		b := NewMetrics()
		assert.NotSame(t, a.Registry(), b.Registry())
	})
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	m := NewMetrics()

	app := fiber.New()
	app.Use(m.MetricsMiddleware())
	app.Get("/metrics", m.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/health", "2xx")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pdfextract_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/cache"
	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/fluxbase-eu/pdfextract/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Extraction: config.ExtractionConfig{
			MinTextLength: 40,
			MaxTextLength: 10000,
		},
		OCR: config.OCRConfig{
			Languages: []string{"hin", "eng"},
			Fast:      config.EngineConfig{Rasterizer: "mupdf", DPI: 150, PSM: 3},
			Accurate:  config.EngineConfig{Rasterizer: "vips", DPI: 300, PSM: 3, OEM: 1, Binary: "/nonexistent/tesseract"},
		},
		Cache: config.CacheConfig{Backend: "memory", TTL: time.Hour},
	}
}

func TestNew(t *testing.T) {
	p, err := New(testConfig(), Options{})
	require.NoError(t, err)
	defer p.Close()

	assert.Same(t, p.Cascade, p.Extractor)
	assert.False(t, p.CacheEnabled())
	assert.Equal(t, 40, p.Cascade.MinTextLength())
	assert.Equal(t, 10000, p.Cascade.MaxTextLength())

	engines := p.Engines()
	require.Len(t, engines, 2)

	assert.Equal(t, extract.MethodFastOCR, engines[0].Method)
	assert.Equal(t, "mupdf", engines[0].Rasterizer)
	assert.Equal(t, 150, engines[0].DPI)

	assert.Equal(t, extract.MethodAccurateOCR, engines[1].Method)
	assert.Equal(t, "Tesseract", engines[1].Engine)
	assert.Equal(t, "vips", engines[1].Rasterizer)
	assert.Equal(t, 300, engines[1].DPI)
	assert.False(t, engines[1].Available)
}

func TestNew_UnknownRasterizer(t *testing.T) {
	cfg := testConfig()
	cfg.OCR.Accurate.Rasterizer = "ghostscript"

	p, err := New(cfg, Options{})
	assert.Nil(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accurate OCR")
}

func TestNew_WithCache(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = true
	store := testutil.NewMockStore()

	p, err := New(cfg, Options{Store: store})
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.CacheEnabled())
	_, ok := p.Extractor.(*cache.Extractor)
	assert.True(t, ok, "extractor should be cached")
}

func TestNew_RecordsStrategyMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	p, err := New(testConfig(), Options{Metrics: metrics})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Extractor.Extract(context.Background(), []byte("definitely not a PDF"))
	require.Error(t, err)

	method, ok := extract.FailedMethod(err)
	require.True(t, ok)
	assert.Equal(t, extract.MethodTextLayer, method)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() != "pdfextract_strategy_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["strategy"] == "Text-based" && labels["outcome"] == "error" {
				found = true
				assert.Equal(t, 1.0, m.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found, "strategy attempt should be recorded")
}

func TestFingerprint(t *testing.T) {
	a := testConfig()
	b := testConfig()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b.Extraction.MinTextLength = 100
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	c := testConfig()
	c.OCR.Languages = []string{"eng"}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))

	d := testConfig()
	d.OCR.Accurate.DPI = 400
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:      ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			BodyLimit:    1024 * 1024,
		},
		Extraction: ExtractionConfig{
			MinTextLength: 40,
			MaxTextLength: 10000,
		},
		OCR: OCRConfig{
			Languages: []string{"hin", "eng"},
			Fast:      EngineConfig{Rasterizer: "mupdf", DPI: 150, PSM: 3},
			Accurate:  EngineConfig{Rasterizer: "vips", DPI: 300, PSM: 3, OEM: 1, Binary: "tesseract"},
		},
		Cache:   CacheConfig{Backend: "memory", TTL: time.Hour},
		Tracing: observability.DefaultTracerConfig(),
	}
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ServerConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: ServerConfig{
				Address:      ":8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
				BodyLimit:    1024 * 1024,
			},
			wantErr: false,
		},
		{
			name: "empty address",
			config: ServerConfig{
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
				BodyLimit:    1024 * 1024,
			},
			wantErr: true,
			errMsg:  "server address cannot be empty",
		},
		{
			name: "zero read timeout",
			config: ServerConfig{
				Address:      ":8080",
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
				BodyLimit:    1024 * 1024,
			},
			wantErr: true,
			errMsg:  "read_timeout must be positive",
		},
		{
			name: "negative write timeout",
			config: ServerConfig{
				Address:      ":8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: -1 * time.Second,
				IdleTimeout:  60 * time.Second,
				BodyLimit:    1024 * 1024,
			},
			wantErr: true,
			errMsg:  "write_timeout must be positive",
		},
		{
			name: "zero body limit",
			config: ServerConfig{
				Address:      ":8080",
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			},
			wantErr: true,
			errMsg:  "body_limit must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExtractionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ExtractionConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults",
			config:  ExtractionConfig{MinTextLength: 40, MaxTextLength: 10000},
			wantErr: false,
		},
		{
			name:    "zero threshold accepts any text",
			config:  ExtractionConfig{MinTextLength: 0, MaxTextLength: 10000},
			wantErr: false,
		},
		{
			name:    "negative threshold",
			config:  ExtractionConfig{MinTextLength: -1, MaxTextLength: 10000},
			wantErr: true,
			errMsg:  "min_text_length cannot be negative",
		},
		{
			name:    "zero cap",
			config:  ExtractionConfig{MinTextLength: 40},
			wantErr: true,
			errMsg:  "max_text_length must be positive",
		},
		{
			name:    "negative max pages",
			config:  ExtractionConfig{MinTextLength: 40, MaxTextLength: 10000, MaxPages: -2},
			wantErr: true,
			errMsg:  "max_pages cannot be negative",
		},
		{
			name:    "negative timeout",
			config:  ExtractionConfig{MinTextLength: 40, MaxTextLength: 10000, Timeout: -time.Second},
			wantErr: true,
			errMsg:  "timeout cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOCRConfig_Validate(t *testing.T) {
	valid := validConfig().OCR

	t.Run("valid config", func(t *testing.T) {
		ocr := valid
		assert.NoError(t, ocr.Validate())
	})

	t.Run("no languages", func(t *testing.T) {
		ocr := valid
		ocr.Languages = nil
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one OCR language is required")
	})

	t.Run("unknown rasterizer", func(t *testing.T) {
		ocr := valid
		ocr.Fast.Rasterizer = "ghostscript"
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fast: rasterizer must be 'mupdf' or 'vips'")
	})

	t.Run("dpi out of range", func(t *testing.T) {
		ocr := valid
		ocr.Accurate.DPI = 1200
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accurate: dpi must be between 50 and 600")
	})

	t.Run("invalid psm", func(t *testing.T) {
		ocr := valid
		ocr.Fast.PSM = 14
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "psm must be between 0 and 13")
	})

	t.Run("invalid oem", func(t *testing.T) {
		ocr := valid
		ocr.Accurate.OEM = 4
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oem must be between 0 and 3")
	})

	t.Run("missing binary", func(t *testing.T) {
		ocr := valid
		ocr.Accurate.Binary = ""
		err := ocr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binary is required")
	})
}

func TestCacheConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  CacheConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "disabled ignores other fields",
			config:  CacheConfig{Enabled: false, Backend: "bogus"},
			wantErr: false,
		},
		{
			name:    "memory backend",
			config:  CacheConfig{Enabled: true, Backend: "memory", TTL: time.Minute},
			wantErr: false,
		},
		{
			name:    "redis backend",
			config:  CacheConfig{Enabled: true, Backend: "redis", RedisURL: "redis://localhost:6379/0", TTL: time.Minute},
			wantErr: false,
		},
		{
			name:    "redis without url",
			config:  CacheConfig{Enabled: true, Backend: "redis", TTL: time.Minute},
			wantErr: true,
			errMsg:  "redis_url is required",
		},
		{
			name:    "unknown backend",
			config:  CacheConfig{Enabled: true, Backend: "memcached", TTL: time.Minute},
			wantErr: true,
			errMsg:  "cache backend must be 'memory' or 'redis'",
		},
		{
			name:    "zero ttl",
			config:  CacheConfig{Enabled: true, Backend: "memory"},
			wantErr: true,
			errMsg:  "ttl must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecurityConfig_Validate(t *testing.T) {
	t.Run("rate limit disabled", func(t *testing.T) {
		sc := SecurityConfig{}
		assert.NoError(t, sc.Validate())
	})

	t.Run("rate limit enabled", func(t *testing.T) {
		sc := SecurityConfig{EnableRateLimit: true, RateLimitMax: 10, RateLimitWindow: time.Minute}
		assert.NoError(t, sc.Validate())
	})

	t.Run("zero max", func(t *testing.T) {
		sc := SecurityConfig{EnableRateLimit: true, RateLimitWindow: time.Minute}
		err := sc.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit_max must be positive")
	})

	t.Run("zero window", func(t *testing.T) {
		sc := SecurityConfig{EnableRateLimit: true, RateLimitMax: 10}
		err := sc.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit_window must be positive")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("wraps section errors", func(t *testing.T) {
		cfg := validConfig()
		cfg.Extraction.MaxTextLength = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extraction configuration error")
	})

	t.Run("tracing sample rate out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracing.Enabled = true
		cfg.Tracing.SampleRate = 1.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sample_rate must be between 0 and 1")
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pdfextract.yaml")
		require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.True(t, cfg.Debug)
		assert.Equal(t, ":8000", cfg.Server.Address)
		assert.Equal(t, 40, cfg.Extraction.MinTextLength)
		assert.Equal(t, 10000, cfg.Extraction.MaxTextLength)
		assert.Equal(t, time.Duration(0), cfg.Extraction.Timeout)
		assert.Equal(t, []string{"hin", "eng"}, cfg.OCR.Languages)
		assert.Equal(t, "mupdf", cfg.OCR.Fast.Rasterizer)
		assert.Equal(t, 150, cfg.OCR.Fast.DPI)
		assert.Equal(t, "vips", cfg.OCR.Accurate.Rasterizer)
		assert.Equal(t, 300, cfg.OCR.Accurate.DPI)
		assert.Equal(t, "tesseract", cfg.OCR.Accurate.Binary)
		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pdfextract.yaml")
		content := `
server:
  address: ":9090"
extraction:
  min_text_length: 100
  timeout: 30s
ocr:
  fast:
    dpi: 200
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Address)
		assert.Equal(t, 100, cfg.Extraction.MinTextLength)
		assert.Equal(t, 30*time.Second, cfg.Extraction.Timeout)
		assert.Equal(t, 200, cfg.OCR.Fast.DPI)
		assert.Equal(t, "mupdf", cfg.OCR.Fast.Rasterizer)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pdfextract.yaml")
		require.NoError(t, os.WriteFile(path, []byte("extraction:\n  min_text_length: 100\n"), 0o600))
		t.Setenv("PDFEXTRACT_EXTRACTION_MIN_TEXT_LENGTH", "7")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Extraction.MinTextLength)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pdfextract.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ocr:\n  fast:\n    rasterizer: ghostscript\n"), 0o600))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

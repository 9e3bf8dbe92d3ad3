package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Extraction ExtractionConfig           `mapstructure:"extraction"`
	OCR        OCRConfig                  `mapstructure:"ocr"`
	Cache      CacheConfig                `mapstructure:"cache"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
	Tracing    observability.TracerConfig `mapstructure:"tracing"`
	Security   SecurityConfig             `mapstructure:"security"`
	Debug      bool                       `mapstructure:"debug"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

// ExtractionConfig controls the cascade
type ExtractionConfig struct {
	MinTextLength int           `mapstructure:"min_text_length"` // output must exceed this many characters
	MaxTextLength int           `mapstructure:"max_text_length"` // returned text is capped at this many characters
	MaxPages      int           `mapstructure:"max_pages"`       // 0 = no limit
	Timeout       time.Duration `mapstructure:"timeout"`         // 0 = no timeout
}

// OCRConfig configures both OCR fallbacks
type OCRConfig struct {
	Languages   []string     `mapstructure:"languages"`
	TessdataDir string       `mapstructure:"tessdata_dir"`
	Fast        EngineConfig `mapstructure:"fast"`
	Accurate    EngineConfig `mapstructure:"accurate"`
}

// EngineConfig configures one OCR fallback
type EngineConfig struct {
	Rasterizer string `mapstructure:"rasterizer"` // mupdf or vips
	DPI        int    `mapstructure:"dpi"`
	PSM        int    `mapstructure:"psm"`
	OEM        int    `mapstructure:"oem"`
	Binary     string `mapstructure:"binary"` // tesseract executable, accurate engine only
}

// CacheConfig configures the optional result cache
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"` // memory or redis
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecurityConfig contains request protection settings
type SecurityConfig struct {
	EnableRateLimit bool          `mapstructure:"enable_rate_limit"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v := viper.New()
	v.SetConfigName("pdfextract")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pdfextract")

	return load(v)
}

// LoadFile loads configuration from an explicit file plus environment variables
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Enable environment variable support with underscore replacer
	v.AutomaticEnv()
	v.SetEnvPrefix("PDFEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
		"../.env", // For when running from subdirectories
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "10m") // OCR of large scans takes minutes
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.body_limit", 100*1024*1024) // 100MB

	// Extraction defaults
	v.SetDefault("extraction.min_text_length", 40)
	v.SetDefault("extraction.max_text_length", 10000)
	v.SetDefault("extraction.max_pages", 0)
	v.SetDefault("extraction.timeout", "0s")

	// OCR defaults
	v.SetDefault("ocr.languages", []string{"hin", "eng"})
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.fast.rasterizer", "mupdf")
	v.SetDefault("ocr.fast.dpi", 150)
	v.SetDefault("ocr.fast.psm", 3)
	v.SetDefault("ocr.fast.oem", 0)
	v.SetDefault("ocr.accurate.rasterizer", "vips")
	v.SetDefault("ocr.accurate.dpi", 300)
	v.SetDefault("ocr.accurate.psm", 3)
	v.SetDefault("ocr.accurate.oem", 1)
	v.SetDefault("ocr.accurate.binary", "tesseract")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Tracing defaults
	tracing := observability.DefaultTracerConfig()
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.endpoint", tracing.Endpoint)
	v.SetDefault("tracing.service_name", tracing.ServiceName)
	v.SetDefault("tracing.environment", tracing.Environment)
	v.SetDefault("tracing.sample_rate", tracing.SampleRate)
	v.SetDefault("tracing.insecure", tracing.Insecure)

	// Security defaults
	v.SetDefault("security.enable_rate_limit", false)
	v.SetDefault("security.rate_limit_max", 30)
	v.SetDefault("security.rate_limit_window", "1m")

	// General defaults
	v.SetDefault("debug", false)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server configuration error: %w", err)
	}
	if err := c.Extraction.Validate(); err != nil {
		return fmt.Errorf("extraction configuration error: %w", err)
	}
	if err := c.OCR.Validate(); err != nil {
		return fmt.Errorf("ocr configuration error: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache configuration error: %w", err)
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security configuration error: %w", err)
	}
	if c.Tracing.Enabled && (c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1) {
		return fmt.Errorf("tracing sample_rate must be between 0 and 1")
	}
	return nil
}

// Validate validates server configuration
func (sc *ServerConfig) Validate() error {
	if sc.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if sc.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}
	if sc.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	if sc.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	if sc.BodyLimit <= 0 {
		return fmt.Errorf("body_limit must be positive")
	}
	return nil
}

// Validate validates extraction configuration
func (ec *ExtractionConfig) Validate() error {
	if ec.MinTextLength < 0 {
		return fmt.Errorf("min_text_length cannot be negative")
	}
	if ec.MaxTextLength <= 0 {
		return fmt.Errorf("max_text_length must be positive")
	}
	if ec.MaxPages < 0 {
		return fmt.Errorf("max_pages cannot be negative")
	}
	if ec.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// Validate validates OCR configuration
func (oc *OCRConfig) Validate() error {
	if len(oc.Languages) == 0 {
		return fmt.Errorf("at least one OCR language is required")
	}
	if err := oc.Fast.Validate(); err != nil {
		return fmt.Errorf("fast: %w", err)
	}
	if err := oc.Accurate.Validate(); err != nil {
		return fmt.Errorf("accurate: %w", err)
	}
	if oc.Accurate.Binary == "" {
		return fmt.Errorf("accurate: binary is required")
	}
	return nil
}

// Validate validates one OCR fallback's settings
func (ec *EngineConfig) Validate() error {
	switch ec.Rasterizer {
	case "mupdf", "vips":
	default:
		return fmt.Errorf("rasterizer must be 'mupdf' or 'vips', got %q", ec.Rasterizer)
	}
	if ec.DPI < 50 || ec.DPI > 600 {
		return fmt.Errorf("dpi must be between 50 and 600")
	}
	if ec.PSM < 0 || ec.PSM > 13 {
		return fmt.Errorf("psm must be between 0 and 13")
	}
	if ec.OEM < 0 || ec.OEM > 3 {
		return fmt.Errorf("oem must be between 0 and 3")
	}
	return nil
}

// Validate validates cache configuration
func (cc *CacheConfig) Validate() error {
	if !cc.Enabled {
		return nil
	}
	switch cc.Backend {
	case "memory":
	case "redis":
		if cc.RedisURL == "" {
			return fmt.Errorf("redis_url is required for redis cache backend")
		}
	default:
		return fmt.Errorf("cache backend must be 'memory' or 'redis'")
	}
	if cc.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

// Validate validates security configuration
func (sc *SecurityConfig) Validate() error {
	if !sc.EnableRateLimit {
		return nil
	}
	if sc.RateLimitMax <= 0 {
		return fmt.Errorf("rate_limit_max must be positive")
	}
	if sc.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive")
	}
	return nil
}

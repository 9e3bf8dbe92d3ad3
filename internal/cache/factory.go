package cache

import (
	"fmt"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/rs/zerolog/log"
)

// NewStore creates a cache store based on the cache configuration.
//
// Backend options:
// - "memory": In-memory store (default for single instance)
// - "redis": Redis-compatible store shared between instances
func NewStore(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		log.Info().Msg("Using in-memory result cache (single instance mode)")
		return NewMemoryStore(10 * time.Minute), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis_url is required for redis cache backend")
		}
		log.Info().Msg("Using Redis-compatible result cache (multi-instance mode)")
		store, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s (valid options: memory, redis)", cfg.Backend)
	}
}

// Package cache stores extraction results keyed by document content so that
// repeated uploads of the same PDF skip the OCR cascade.
package cache

import (
	"context"
	"time"
)

// Store is the interface for result cache backends.
// - Memory: single instance deployments (no external dependencies)
// - Redis: shared cache across instances (works with Dragonfly, Redis, Valkey, KeyDB)
type Store interface {
	// Get returns the cached value for key, or nil when the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for the given TTL. A TTL of 0 means no
	// expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close closes the store and releases resources.
	Close() error
}

package cache

import (
	"testing"

	"github.com/fluxbase-eu/pdfextract/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates memory store for empty backend", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Backend: ""})
		require.NoError(t, err)
		require.NotNil(t, store)
		defer store.Close()

		_, ok := store.(*MemoryStore)
		assert.True(t, ok, "should be MemoryStore")
	})

	t.Run("creates memory store for memory backend", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Backend: "memory"})
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*MemoryStore)
		assert.True(t, ok, "should be MemoryStore")
	})

	t.Run("errors for redis backend without url", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Backend: "redis"})
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "redis_url is required")
	})

	t.Run("errors for invalid redis url", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Backend: "redis", RedisURL: "not-a-url"})
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("errors for unknown backend", func(t *testing.T) {
		store, err := NewStore(&config.CacheConfig{Backend: "memcached"})
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "unknown cache backend")
	})
}

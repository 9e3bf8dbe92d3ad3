package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key returns nil", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		defer store.Close()

		value, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		defer store.Close()

		require.NoError(t, store.Set(ctx, "doc", []byte("payload"), time.Minute))

		value, err := store.Get(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), value)
	})

	t.Run("expired entries are not returned", func(t *testing.T) {
		store := NewMemoryStore(time.Minute)
		defer store.Close()

		require.NoError(t, store.Set(ctx, "doc", []byte("payload"), time.Second))
		assert.Eventually(t, func() bool {
			value, err := store.Get(ctx, "doc")
			return err == nil && value == nil
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := NewMemoryStore(0)
		defer store.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Get(cancelled, "doc")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, store.Set(cancelled, "doc", []byte("x"), time.Minute), context.Canceled)
	})
}

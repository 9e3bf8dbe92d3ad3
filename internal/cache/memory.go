package cache

import (
	"context"
	"time"

	"github.com/gofiber/storage/memory/v2"
)

// MemoryStore implements Store on top of Fiber's in-memory storage.
// It does not share entries across instances.
type MemoryStore struct {
	storage *memory.Storage
}

// NewMemoryStore creates a new in-memory cache store.
// gcInterval specifies how often expired entries are removed.
func NewMemoryStore(gcInterval time.Duration) *MemoryStore {
	if gcInterval <= 0 {
		gcInterval = 10 * time.Minute
	}

	return &MemoryStore{
		storage: memory.New(memory.Config{
			GCInterval: gcInterval,
		}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.storage.Get(key)
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.storage.Set(key, value, ttl)
}

func (s *MemoryStore) Close() error {
	return s.storage.Close()
}

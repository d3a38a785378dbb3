package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nikbrunner/bookmarkplus/internal/config"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
)

// Keys under which the organizer keeps its collections.
const (
	KeyBookmarks = "bookmarks"
	KeyFolders   = "folders"
	KeyTags      = "tags"
)

// Store is an asynchronous key-value store with whole-value semantics.
// Get omits keys that have never been written. Set replaces each given key
// entirely; writes to different keys are not atomic with each other.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, values map[string][]byte) error
	Close() error
}

// Open opens the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendJSON, "":
		return NewJSONStorage(cfg.DataPath), nil
	case config.BackendSQLite:
		return NewSQLiteStorage(cfg.SQLitePath)
	case config.BackendRedis:
		return NewRedisStorage(ctx, RedisOptions{
			Addr:      cfg.Redis.Addr,
			Username:  cfg.Redis.Username,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, log)
	case config.BackendPostgres:
		return NewPostgresStorage(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if v, ok := s.values[key]; ok {
			result[key] = slices.Clone(v)
		}
	}
	return result, nil
}

func (s *MemoryStorage) Set(_ context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range values {
		s.values[key] = slices.Clone(v)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

func (s *MemoryStorage) Close() error { return nil }

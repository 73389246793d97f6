package repository

import (
	"context"
	"sync"

	"highlight-saver/internal/domain"
)

// MemoryKVStore keeps values in process memory. Nothing survives a restart.
type MemoryKVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string][]byte)}
}

func (s *MemoryKVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if v, ok := s.values[key]; ok {
			out[key] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (s *MemoryKVStore) Set(ctx context.Context, values map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range values {
		s.values[key] = append([]byte(nil), value...)
	}
	return nil
}

func (s *MemoryKVStore) Close() error { return nil }

var _ domain.KeyValueStore = (*MemoryKVStore)(nil)

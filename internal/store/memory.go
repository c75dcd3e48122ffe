package store

import (
	"context"
	"sync"
)

// memoryKV keeps records in process memory. Used by tests and by runs
// without a configured database.
type memoryKV struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryKV() KV {
	return &memoryKV{records: make(map[string][]byte)}
}

func (s *memoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memoryKV) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = stored
	return nil
}

func (s *memoryKV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

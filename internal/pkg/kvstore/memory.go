package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. A positive quota caps the
// total bytes held across all keys, mirroring browser storage limits.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int
	used  int
}

func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.used - len(s.data[key]) + len(value)
	if s.quota > 0 && next > s.quota {
		return ErrQuotaExceeded
	}
	s.data[key] = append([]byte(nil), value...)
	s.used = next
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used -= len(s.data[key])
	delete(s.data, key)
	return nil
}

// Used 当前占用字节数
func (s *MemoryStore) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

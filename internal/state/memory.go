package state

import (
	"context"
	"sync"
)

type MemMedium struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemMedium() *MemMedium {
	return &MemMedium{m: map[string][]byte{}}
}

func (s *MemMedium) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemMedium) Set(ctx context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
	return nil
}

func (s *MemMedium) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemMedium) Ping(ctx context.Context) error { return nil }

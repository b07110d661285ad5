package voucher

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Voucher
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Voucher{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Voucher, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Voucher, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[id]
	return v, ok, nil
}

func (s *MemStore) Create(ctx context.Context, v Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.m {
		if existing.Code == v.Code {
			return ErrCodeExists
		}
	}
	s.m[v.ID] = v
	return nil
}

func (s *MemStore) Update(ctx context.Context, v Voucher) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[v.ID]; !ok {
		return false, nil
	}
	s.m[v.ID] = v
	return true, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return false, nil
	}
	delete(s.m, id)
	return true, nil
}

func (s *MemStore) Toggle(ctx context.Context, id string) (Voucher, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m[id]
	if !ok {
		return Voucher{}, false, nil
	}
	v.Active = !v.Active
	s.m[id] = v
	return v, true, nil
}

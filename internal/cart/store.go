package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/state"
)

// Store keeps the authoritative in-memory cart per identity and writes the
// full snapshot through to the medium on every mutation. All mutations are
// serialized under one mutex, so rapid consecutive calls each see the
// latest state rather than a stale snapshot.
type Store struct {
	mu     sync.Mutex
	medium state.Medium
	log    *zap.Logger

	carts  map[string][]Line
	loaded map[string]bool
}

func NewStore(m state.Medium, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		medium: m,
		log:    log,
		carts:  map[string][]Line{},
		loaded: map[string]bool{},
	}
}

func snapshotKey(identity string) string { return "cart:" + identity }

// hydrate loads the persisted cart once per identity. A snapshot that fails
// to parse is discarded and the corrupt entry deleted, so the cart starts
// empty instead of failing initialization. Caller holds s.mu.
func (s *Store) hydrate(ctx context.Context, identity string) error {
	if s.loaded[identity] {
		return nil
	}

	raw, ok, err := s.medium.Get(ctx, snapshotKey(identity))
	if err != nil {
		return err
	}

	if ok {
		var lines []Line
		if err := json.Unmarshal(raw, &lines); err != nil {
			s.log.Warn("discarding corrupt cart snapshot",
				zap.String("identity", identity), zap.Error(err))
			_ = s.medium.Delete(ctx, snapshotKey(identity))
		} else {
			s.carts[identity] = lines
		}
	}

	s.loaded[identity] = true
	return nil
}

// persist writes the full snapshot synchronously. An empty cart is stored
// as an absent key. Caller holds s.mu.
func (s *Store) persist(ctx context.Context, identity string) error {
	lines := s.carts[identity]
	if len(lines) == 0 {
		return s.medium.Delete(ctx, snapshotKey(identity))
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.medium.Set(ctx, snapshotKey(identity), raw)
}

// Add merges the line into the cart: an existing line with the same key has
// its quantity incremented by the requested amount, otherwise the line is
// appended. A quantity below one defaults to one.
func (s *Store) Add(ctx context.Context, identity string, line Line) ([]Line, error) {
	if line.ProductID <= 0 || line.UnitPrice < 0 {
		return nil, ErrBadLine
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}

	lines := s.carts[identity]
	merged := false
	for i := range lines {
		if lines[i].Key == line.Key {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}
	s.carts[identity] = lines

	if err := s.persist(ctx, identity); err != nil {
		return nil, err
	}
	return copyLines(lines), nil
}

// SetQuantity overwrites the line's quantity exactly. Quantities below one
// are rejected. Setting an absent key is a no-op.
func (s *Store) SetQuantity(ctx context.Context, identity string, k Key, quantity int) ([]Line, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}

	lines := s.carts[identity]
	for i := range lines {
		if lines[i].Key == k {
			lines[i].Quantity = quantity
			if err := s.persist(ctx, identity); err != nil {
				return nil, err
			}
			break
		}
	}
	return copyLines(lines), nil
}

func (s *Store) Increment(ctx context.Context, identity string, k Key) ([]Line, error) {
	return s.step(ctx, identity, k, +1)
}

// Decrement lowers the quantity by one; a line at quantity one is removed
// entirely, never kept at zero.
func (s *Store) Decrement(ctx context.Context, identity string, k Key) ([]Line, error) {
	return s.step(ctx, identity, k, -1)
}

func (s *Store) step(ctx context.Context, identity string, k Key, delta int) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}

	lines := s.carts[identity]
	for i := range lines {
		if lines[i].Key != k {
			continue
		}

		lines[i].Quantity += delta
		if lines[i].Quantity < 1 {
			lines = append(lines[:i], lines[i+1:]...)
		}
		s.carts[identity] = lines

		if err := s.persist(ctx, identity); err != nil {
			return nil, err
		}
		break
	}
	return copyLines(lines), nil
}

// Remove deletes the line. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, identity string, k Key) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}

	lines := s.carts[identity]
	for i := range lines {
		if lines[i].Key == k {
			lines = append(lines[:i], lines[i+1:]...)
			s.carts[identity] = lines
			if err := s.persist(ctx, identity); err != nil {
				return nil, err
			}
			break
		}
	}
	return copyLines(lines), nil
}

func (s *Store) Clear(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return err
	}

	s.carts[identity] = nil
	return s.persist(ctx, identity)
}

func (s *Store) Lines(ctx context.Context, identity string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}
	return copyLines(s.carts[identity]), nil
}

func (s *Store) Total(ctx context.Context, identity string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return 0, err
	}
	return Total(s.carts[identity]), nil
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

package order

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/state"
)

// Store holds order history keyed by identity, most-recent-first, persisted
// as one snapshot per identity. A small owner index maps order IDs back to
// their identity so fulfillment updates can find an order without knowing
// whose it is.
type Store struct {
	mu     sync.Mutex
	medium state.Medium
	log    *zap.Logger

	orders map[string][]Order
	loaded map[string]bool
}

func NewStore(m state.Medium, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		medium: m,
		log:    log,
		orders: map[string][]Order{},
		loaded: map[string]bool{},
	}
}

func historyKey(identity string) string { return "orders:" + identity }
func ownerKey(orderID string) string    { return "order_owner:" + orderID }

func (s *Store) hydrate(ctx context.Context, identity string) error {
	if s.loaded[identity] {
		return nil
	}

	raw, ok, err := s.medium.Get(ctx, historyKey(identity))
	if err != nil {
		return err
	}

	if ok {
		var orders []Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			s.log.Warn("discarding corrupt order history",
				zap.String("identity", identity), zap.Error(err))
			_ = s.medium.Delete(ctx, historyKey(identity))
		} else {
			s.orders[identity] = orders
		}
	}

	s.loaded[identity] = true
	return nil
}

func (s *Store) persist(ctx context.Context, identity string) error {
	orders := s.orders[identity]
	if len(orders) == 0 {
		return s.medium.Delete(ctx, historyKey(identity))
	}

	raw, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return s.medium.Set(ctx, historyKey(identity), raw)
}

// Create snapshots the items into a fresh pending order and prepends it to
// the identity's history. It does not touch the cart; clearing it is the
// caller's responsibility.
func (s *Store) Create(ctx context.Context, identity string, items []cart.Line, total int64, c Customer, pm PaymentMethod) (Order, error) {
	snapshot := make([]cart.Line, len(items))
	copy(snapshot, items)

	o := Order{
		ID:            "ord_" + uuid.NewString(),
		Number:        fmt.Sprintf("#%06d", 100000+rand.Intn(900000)),
		UserID:        identity,
		CreatedAt:     time.Now().UTC(),
		Status:        StatusPending,
		Items:         snapshot,
		TotalAmount:   total,
		Customer:      c,
		PaymentMethod: pm,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return Order{}, err
	}

	s.orders[identity] = append([]Order{o}, s.orders[identity]...)

	if err := s.persist(ctx, identity); err != nil {
		return Order{}, err
	}
	if err := s.medium.Set(ctx, ownerKey(o.ID), []byte(identity)); err != nil {
		return Order{}, err
	}
	return o, nil
}

// List returns the identity's orders, most-recent-first, optionally
// filtered by exact status. An empty filter returns everything.
func (s *Store) List(ctx context.Context, identity string, filter Status) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(s.orders[identity]))
	for _, o := range s.orders[identity] {
		if filter == "" || o.Status == filter {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, identity, id string) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return Order{}, false, err
	}

	for _, o := range s.orders[identity] {
		if o.ID == id {
			return o, true, nil
		}
	}
	return Order{}, false, nil
}

// Cancel transitions pending -> cancelled. From any other status it is a
// no-op: the current order is returned with changed=false.
func (s *Store) Cancel(ctx context.Context, identity, id string) (Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hydrate(ctx, identity); err != nil {
		return Order{}, false, err
	}

	orders := s.orders[identity]
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if orders[i].Status != StatusPending {
			return orders[i], false, nil
		}

		orders[i].Status = StatusCancelled
		if err := s.persist(ctx, identity); err != nil {
			return Order{}, false, err
		}
		return orders[i], true, nil
	}
	return Order{}, false, ErrNotFound
}

// Advance applies the next forward fulfillment transition when target
// matches it. Terminal orders refuse every transition.
func (s *Store) Advance(ctx context.Context, id string, target Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.owner(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.hydrate(ctx, identity); err != nil {
		return Order{}, err
	}

	orders := s.orders[identity]
	for i := range orders {
		if orders[i].ID != id {
			continue
		}

		next, ok := orders[i].Status.Next()
		if !ok || next != target {
			return orders[i], ErrBadTransition
		}

		orders[i].Status = target
		if err := s.persist(ctx, identity); err != nil {
			return Order{}, err
		}
		return orders[i], nil
	}
	return Order{}, ErrNotFound
}

// owner resolves an order ID to its identity via the owner index. Caller
// holds s.mu.
func (s *Store) owner(ctx context.Context, orderID string) (string, error) {
	raw, ok, err := s.medium.Get(ctx, ownerKey(orderID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	return string(raw), nil
}

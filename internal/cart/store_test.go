package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/state"
)

const testUser = "u_test"

func newTestStore() (*Store, *state.MemMedium) {
	m := state.NewMemMedium()
	return NewStore(m, zap.NewNop()), m
}

func line(productID int64, price int64, qty int) Line {
	return Line{
		Key:       Key{ProductID: productID},
		Name:      "product",
		UnitPrice: price,
		Quantity:  qty,
	}
}

func TestAdd_MergesSameKey(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.Add(ctx, testUser, line(1, 120000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}
	lines, err := s.Add(ctx, testUser, line(1, 120000, 3))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("lines=%d want=1", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("quantity=%d want=5", lines[0].Quantity)
	}
	if got := Total(lines); got != 600000 {
		t.Fatalf("total=%d want=600000", got)
	}
}

func TestAdd_DistinctVariantsStaySeparate(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	red := line(1, 120000, 1)
	red.Color = "red"
	blue := line(1, 120000, 1)
	blue.Color = "blue"

	if _, err := s.Add(ctx, testUser, red); err != nil {
		t.Fatalf("add: %v", err)
	}
	lines, err := s.Add(ctx, testUser, blue)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("lines=%d want=2", len(lines))
	}
}

func TestAdd_DefaultsQuantityToOne(t *testing.T) {
	s, _ := newTestStore()

	lines, err := s.Add(context.Background(), testUser, line(1, 1000, 0))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if lines[0].Quantity != 1 {
		t.Fatalf("quantity=%d want=1", lines[0].Quantity)
	}
}

func TestAdd_RejectsBadLine(t *testing.T) {
	s, _ := newTestStore()

	if _, err := s.Add(context.Background(), testUser, line(0, 1000, 1)); !errors.Is(err, ErrBadLine) {
		t.Fatalf("err=%v want ErrBadLine", err)
	}
	if _, err := s.Add(context.Background(), testUser, line(1, -1, 1)); !errors.Is(err, ErrBadLine) {
		t.Fatalf("err=%v want ErrBadLine", err)
	}
}

func TestSetQuantity_ExactOverwrite(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 1000, 2)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, err := s.SetQuantity(ctx, testUser, l.Key, 7)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if lines[0].Quantity != 7 {
		t.Fatalf("quantity=%d want=7 (must overwrite, not add)", lines[0].Quantity)
	}
}

func TestSetQuantity_RejectsBelowOne(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 1000, 2)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := s.SetQuantity(ctx, testUser, l.Key, 0); !errors.Is(err, ErrQuantityTooLow) {
		t.Fatalf("err=%v want ErrQuantityTooLow", err)
	}

	lines, err := s.Lines(ctx, testUser)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("quantity=%d want=2 (rejected set must be a no-op)", lines[0].Quantity)
	}
}

func TestDecrement_AtOneRemovesLine(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 120000, 2)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, err := s.Decrement(ctx, testUser, l.Key)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if lines[0].Quantity != 1 {
		t.Fatalf("quantity=%d want=1", lines[0].Quantity)
	}

	lines, err = s.Decrement(ctx, testUser, l.Key)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("lines=%d want=0 (line at 1 must be removed, not kept at 0)", len(lines))
	}

	total, err := s.Total(ctx, testUser)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Fatalf("total=%d want=0", total)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 1000, 1)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	first, err := s.Remove(ctx, testUser, l.Key)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := s.Remove(ctx, testUser, l.Key)
	if err != nil {
		t.Fatalf("remove twice: %v", err)
	}

	if len(first) != 0 || len(second) != 0 {
		t.Fatalf("first=%d second=%d want both empty", len(first), len(second))
	}
}

func TestTotal_AlwaysRecomputed(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 120000, 2)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	total, err := s.Total(ctx, testUser)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 240000 {
		t.Fatalf("total=%d want=240000", total)
	}

	if _, err := s.SetQuantity(ctx, testUser, l.Key, 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	total, err = s.Total(ctx, testUser)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 600000 {
		t.Fatalf("total=%d want=600000 (must reflect the mutation immediately)", total)
	}
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	m := state.NewMemMedium()
	ctx := context.Background()

	s1 := NewStore(m, zap.NewNop())
	if _, err := s1.Add(ctx, testUser, line(1, 120000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh store over the same medium must hydrate the cart.
	s2 := NewStore(m, zap.NewNop())
	lines, err := s2.Lines(ctx, testUser)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("hydrated lines=%v", lines)
	}
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	m := state.NewMemMedium()
	ctx := context.Background()

	if err := m.Set(ctx, "cart:"+testUser, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewStore(m, zap.NewNop())
	lines, err := s.Lines(ctx, testUser)
	if err != nil {
		t.Fatalf("lines: %v (corruption must not fail initialization)", err)
	}
	if len(lines) != 0 {
		t.Fatalf("lines=%d want=0", len(lines))
	}

	// The corrupt entry is discarded, not left to fail again.
	if _, ok, _ := m.Get(ctx, "cart:"+testUser); ok {
		t.Fatalf("corrupt snapshot still present")
	}
}

func TestStore_EmptyCartStoredAsAbsent(t *testing.T) {
	m := state.NewMemMedium()
	ctx := context.Background()

	s := NewStore(m, zap.NewNop())
	l := line(1, 1000, 1)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Remove(ctx, testUser, l.Key); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, ok, _ := m.Get(ctx, "cart:"+testUser); ok {
		t.Fatalf("empty cart must not leave a snapshot behind")
	}
}

func TestStore_IsolatesIdentities(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.Add(ctx, "u_a", line(1, 1000, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines, err := s.Lines(ctx, "u_b")
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("u_b sees u_a's cart")
	}
}

func TestStore_ConcurrentMutationsAreSequenced(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	l := line(1, 1000, 1)
	if _, err := s.Add(ctx, testUser, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Increment(ctx, testUser, l.Key); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	lines, err := s.Lines(ctx, testUser)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if lines[0].Quantity != 1+n {
		t.Fatalf("quantity=%d want=%d (mutations must not read stale state)", lines[0].Quantity, 1+n)
	}
}

package voucher

import (
	"context"
	"testing"
	"time"
)

func percentVoucher() Voucher {
	return Voucher{
		ID:            "vch_1",
		Code:          "SALE10",
		Type:          TypePercentage,
		Amount:        10,
		MinOrderValue: 100000,
		MaxDiscount:   50000,
		StartAt:       time.Now().Add(-time.Hour),
		EndAt:         time.Now().Add(time.Hour),
		Active:        true,
	}
}

func TestDiscount_Percentage(t *testing.T) {
	v := percentVoucher()

	if got := v.Discount(200000); got != 20000 {
		t.Fatalf("discount=%d want=20000", got)
	}
}

func TestDiscount_PercentageCappedByMax(t *testing.T) {
	v := percentVoucher()

	// 10% of 2,000,000 is 200,000 but the cap is 50,000.
	if got := v.Discount(2000000); got != 50000 {
		t.Fatalf("discount=%d want=50000", got)
	}
}

func TestDiscount_ZeroUnderMinOrder(t *testing.T) {
	v := percentVoucher()

	if got := v.Discount(99999); got != 0 {
		t.Fatalf("discount=%d want=0", got)
	}
}

func TestDiscount_FixedNeverExceedsSubtotal(t *testing.T) {
	v := Voucher{Type: TypeFixed, Amount: 50000, Active: true}

	if got := v.Discount(30000); got != 30000 {
		t.Fatalf("discount=%d want=30000 (capped at subtotal)", got)
	}
	if got := v.Discount(80000); got != 50000 {
		t.Fatalf("discount=%d want=50000", got)
	}
}

func TestUsableAt(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name     string
		mutate   func(*Voucher)
		subtotal int64
		want     bool
	}{
		{"usable", func(v *Voucher) {}, 200000, true},
		{"inactive", func(v *Voucher) { v.Active = false }, 200000, false},
		{"expired", func(v *Voucher) { v.EndAt = now.Add(-time.Minute) }, 200000, false},
		{"not started", func(v *Voucher) { v.StartAt = now.Add(time.Minute) }, 200000, false},
		{"under min order", func(v *Voucher) {}, 50000, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := percentVoucher()
			c.mutate(&v)
			if got := v.UsableAt(now, c.subtotal); got != c.want {
				t.Fatalf("usable=%v want=%v", got, c.want)
			}
		})
	}
}

func TestMemStore_CRUDAndToggle(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	v := percentVoucher()
	if err := s.Create(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, Voucher{ID: "vch_2", Code: "SALE10"}); err != ErrCodeExists {
		t.Fatalf("duplicate code: err=%v want ErrCodeExists", err)
	}

	got, found, err := s.Get(ctx, v.ID)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.Code != "SALE10" {
		t.Fatalf("code=%s", got.Code)
	}

	got.Amount = 20
	if ok, err := s.Update(ctx, got); err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	toggled, found, err := s.Toggle(ctx, v.ID)
	if err != nil || !found {
		t.Fatalf("toggle: found=%v err=%v", found, err)
	}
	if toggled.Active {
		t.Fatalf("toggle did not flip active")
	}

	if ok, err := s.Delete(ctx, v.ID); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, err := s.Delete(ctx, v.ID); err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v want not found", ok, err)
	}
}

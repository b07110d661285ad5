// Package voucher holds discount vouchers and the admin panel managing
// them. Vouchers are informational at checkout: the discount math here is
// for display and availability checks, not settlement.
package voucher

import (
	"errors"
	"time"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

func (t Type) Valid() bool {
	return t == TypePercentage || t == TypeFixed
}

type Voucher struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Type          Type      `json:"type"`
	Amount        int64     `json:"amount"`
	MinOrderValue int64     `json:"min_order_value,omitempty"`
	MaxDiscount   int64     `json:"max_discount,omitempty"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Active        bool      `json:"active"`
}

// Discount computes the voucher's value against a subtotal. Percentage
// vouchers are capped by MaxDiscount; no voucher ever exceeds the subtotal
// or applies below MinOrderValue.
func (v Voucher) Discount(subtotal int64) int64 {
	if v.MinOrderValue > 0 && subtotal < v.MinOrderValue {
		return 0
	}

	var discount int64
	if v.Type == TypePercentage {
		discount = subtotal * v.Amount / 100
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	} else {
		discount = v.Amount
	}

	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// UsableAt reports whether the voucher applies to an order of the given
// subtotal at the given time.
func (v Voucher) UsableAt(now time.Time, subtotal int64) bool {
	if !v.Active {
		return false
	}
	if !v.StartAt.IsZero() && now.Before(v.StartAt) {
		return false
	}
	if !v.EndAt.IsZero() && now.After(v.EndAt) {
		return false
	}
	if v.MinOrderValue > 0 && subtotal < v.MinOrderValue {
		return false
	}
	return true
}

var (
	ErrCodeExists = errors.New("voucher code already exists")
	ErrNotFound   = errors.New("voucher not found")
)

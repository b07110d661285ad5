// Package cart holds the per-identity shopping cart: variant-keyed line
// items with merge-on-add semantics, written through to the state medium on
// every mutation.
package cart

import (
	"errors"
	"fmt"
)

// Key identifies one logical cart line. Two lines with the same key are the
// same purchasable configuration and are always merged, never duplicated.
// VariantID is set when the backend assigns variant identifiers; otherwise
// Color/Size distinguish configurations of the base product.
type Key struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

func (k Key) String() string {
	s := fmt.Sprintf("p%d", k.ProductID)
	if k.VariantID != 0 {
		s += fmt.Sprintf("/v%d", k.VariantID)
	}
	if k.Color != "" {
		s += "/" + k.Color
	}
	if k.Size != "" {
		s += "/" + k.Size
	}
	return s
}

// Line is one purchasable unit in the cart. Quantity is always >= 1: a line
// that would reach zero is removed instead.
type Line struct {
	Key
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

func (l Line) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Total recomputes the cart total from the lines. It is never cached.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}

var (
	ErrQuantityTooLow = errors.New("quantity below one")
	ErrBadLine        = errors.New("bad cart line")
)

// Package order keeps the per-identity order history: immutable snapshots
// taken at checkout, with a forward-only status lifecycle.
package order

import (
	"errors"
	"time"

	"storefront/internal/cart"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipping   Status = "shipping"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses permit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Next returns the forward fulfillment transition. Cancellation is not part
// of the chain; it is only legal from pending.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusShipping, true
	case StatusShipping:
		return StatusCompleted, true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentBanking PaymentMethod = "banking"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCOD || p == PaymentBanking
}

type Customer struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	Note     string `json:"note,omitempty"`
}

// Order is an immutable snapshot created at checkout. Only Status mutates
// afterward; Items are a copy of the cart lines at submission time.
type Order struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	UserID        string        `json:"user_id"`
	CreatedAt     time.Time     `json:"created_at"`
	Status        Status        `json:"status"`
	Items         []cart.Line   `json:"items"`
	TotalAmount   int64         `json:"total_amount"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

var (
	ErrNotFound      = errors.New("order not found")
	ErrBadTransition = errors.New("illegal status transition")
)

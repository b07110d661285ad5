package checkout

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/order"
)

type Service struct {
	Cart   *cart.Store
	Orders *order.Store
	Log    *zap.Logger
}

// Submit validates the form, snapshots the cart into a pending order, and
// then clears the cart. Order creation and cart clearing are deliberately
// two steps: the order exists even if the clear fails, and the clear is
// retried-safe because Clear is unconditional.
func (s *Service) Submit(ctx context.Context, identity string, f Form) (order.Order, error) {
	lines, err := s.Cart.Lines(ctx, identity)
	if err != nil {
		return order.Order{}, err
	}
	if len(lines) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	if errs := f.Validate(); len(errs) > 0 {
		return order.Order{}, &ValidationError{Fields: errs}
	}

	customer := order.Customer{
		FullName: f.FullName,
		Phone:    f.Phone,
		Email:    f.Email,
		Address:  f.ComposedAddress(),
		Note:     f.Note,
	}

	o, err := s.Orders.Create(ctx, identity, lines, cart.Total(lines), customer, order.PaymentMethod(f.PaymentMethod))
	if err != nil {
		return order.Order{}, err
	}

	if err := s.Cart.Clear(ctx, identity); err != nil {
		// The order is already placed; losing the clear only leaves the
		// cart populated, so report the order and log the failure.
		if s.Log != nil {
			s.Log.Error("cart clear after checkout failed",
				zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	return o, nil
}

// Package state is the keyed snapshot medium behind the cart, order and
// profile stores. Each store serializes its full state as one value under a
// logical key ("cart:<user>", "orders:<user>", "profile:<user>"); an absent
// key means no data.
package state

import "context"

type Medium interface {
	// Get returns (nil, false, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

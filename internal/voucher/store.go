package voucher

import "context"

type Store interface {
	List(ctx context.Context) ([]Voucher, error)
	Get(ctx context.Context, id string) (Voucher, bool, error)
	Create(ctx context.Context, v Voucher) error
	// Update replaces the voucher; found=false when the id is unknown.
	Update(ctx context.Context, v Voucher) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Toggle flips the active flag and returns the updated voucher.
	Toggle(ctx context.Context, id string) (Voucher, bool, error)
	Ping(ctx context.Context) error
}

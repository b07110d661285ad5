package voucher

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresStore backs Store with a vouchers table:
//
//	CREATE TABLE vouchers (
//	    id              text PRIMARY KEY,
//	    code            text NOT NULL UNIQUE,
//	    type            text NOT NULL,
//	    amount          bigint NOT NULL,
//	    min_order_value bigint NOT NULL DEFAULT 0,
//	    max_discount    bigint NOT NULL DEFAULT 0,
//	    start_at        timestamptz NOT NULL,
//	    end_at          timestamptz NOT NULL,
//	    active          boolean NOT NULL DEFAULT true
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Voucher, error) {
	var out []Voucher

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, code, type, amount, min_order_value, max_discount, start_at, end_at, active
			FROM vouchers
			ORDER BY code ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Voucher, 0, 16)
		for rows.Next() {
			var v Voucher
			if err := scanVoucher(rows.Scan, &v); err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Voucher, bool, error) {
	var v Voucher

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, code, type, amount, min_order_value, max_discount, start_at, end_at, active
			FROM vouchers
			WHERE id = $1
		`, id)
		return scanVoucher(row.Scan, &v)
	})

	if err == sql.ErrNoRows {
		return Voucher{}, false, nil
	}
	if err != nil {
		return Voucher{}, false, err
	}
	return v, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, v Voucher) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO vouchers (id, code, type, amount, min_order_value, max_discount, start_at, end_at, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, v.ID, v.Code, string(v.Type), v.Amount, v.MinOrderValue, v.MaxDiscount, v.StartAt, v.EndAt, v.Active)

		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return err
	})
}

func (s *PostgresStore) Update(ctx context.Context, v Voucher) (bool, error) {
	var found bool

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE vouchers
			SET code = $2, type = $3, amount = $4, min_order_value = $5,
			    max_discount = $6, start_at = $7, end_at = $8, active = $9
			WHERE id = $1
		`, v.ID, v.Code, string(v.Type), v.Amount, v.MinOrderValue, v.MaxDiscount, v.StartAt, v.EndAt, v.Active)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})

	return found, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	var found bool

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM vouchers
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		found = n > 0
		return err
	})

	return found, err
}

func (s *PostgresStore) Toggle(ctx context.Context, id string) (Voucher, bool, error) {
	var v Voucher

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			UPDATE vouchers
			SET active = NOT active
			WHERE id = $1
			RETURNING id, code, type, amount, min_order_value, max_discount, start_at, end_at, active
		`, id)
		return scanVoucher(row.Scan, &v)
	})

	if err == sql.ErrNoRows {
		return Voucher{}, false, nil
	}
	if err != nil {
		return Voucher{}, false, err
	}
	return v, true, nil
}

func scanVoucher(scan func(dest ...any) error, v *Voucher) error {
	var typ string
	if err := scan(&v.ID, &v.Code, &typ, &v.Amount, &v.MinOrderValue, &v.MaxDiscount, &v.StartAt, &v.EndAt, &v.Active); err != nil {
		return err
	}
	v.Type = Type(typ)
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}

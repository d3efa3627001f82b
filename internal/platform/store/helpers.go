package store

import (
	"context"

	perr "brushline/internal/platform/errors"
)

// ExecOne runs a write and requires exactly one affected row
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return perr.FromPostgres(err, "exec")
	}
	if n := tag.RowsAffected(); n != 1 {
		if n == 0 {
			return perr.ErrNotFound
		}
		return perr.Newf(perr.ErrorCodeConflict, "expected 1 row affected, got %d", n)
	}
	return nil
}

// Many maps every row with scan
func Many[T any](ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// One maps exactly one row with scan; no rows is ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	items, err := Many(ctx, q, scan, sql, args...)
	switch {
	case err != nil:
		return zero, err
	case len(items) == 0:
		return zero, perr.ErrNotFound
	case len(items) > 1:
		return zero, perr.Newf(perr.ErrorCodeConflict, "expected 1 row, got %d", len(items))
	}
	return items[0], nil
}

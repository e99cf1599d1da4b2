package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Run query and collect exactly one row
// Returns pgx.ErrNoRows if nothing matched, rows are always released
func fetchOne[T any](ctx context.Context, db DBTX, query string, rowTo pgx.RowToFunc[T], args ...any) (T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}

	return pgx.CollectOneRow(rows, rowTo)
}

// Run query and collect all rows, empty slice if nothing matched
func fetchAll[T any](ctx context.Context, db DBTX, query string, rowTo pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, rowTo)
}

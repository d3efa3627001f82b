package store

import (
	"context"
	"database/sql"

	"brushline/internal/platform/store/ch"
	"brushline/internal/platform/store/duck"
)

// chQuerier is the part of *ch.CH the adapter uses
type chQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

// clickhouseAdapter exposes a ClickHouse client as Analytics
type clickhouseAdapter struct{ inner chQuerier }

var _ Analytics = (*clickhouseAdapter)(nil)

func newCHAdapter(c chQuerier) *clickhouseAdapter { return &clickhouseAdapter{inner: c} }

func (a *clickhouseAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (a *clickhouseAdapter) Exec(ctx context.Context, q string, args ...any) error {
	return a.inner.Exec(ctx, q, args...)
}

func (a *clickhouseAdapter) Ping(ctx context.Context) error { return a.inner.Ping(ctx) }
func (a *clickhouseAdapter) Close() error                   { return a.inner.Close() }

type chRows struct{ r ch.Rows }

func (x chRows) Next() bool             { return x.r.Next() }
func (x chRows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x chRows) Err() error             { return x.r.Err() }
func (x chRows) Close()                 { _ = x.r.Close() }
func (x chRows) Columns() []string      { return x.r.Columns() }

// duckAdapter exposes a DuckDB handle as Analytics
type duckAdapter struct{ db *duck.DB }

var _ Analytics = (*duckAdapter)(nil)

// NewDuckAdapter wraps an open DuckDB handle
func NewDuckAdapter(db *duck.DB) Analytics { return &duckAdapter{db: db} }

func (a *duckAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	r, err := a.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (a *duckAdapter) Exec(ctx context.Context, q string, args ...any) error {
	return a.db.Exec(ctx, q, args...)
}

func (a *duckAdapter) Ping(ctx context.Context) error { return a.db.Ping(ctx) }
func (a *duckAdapter) Close() error                   { return a.db.Close() }

type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool             { return x.r.Next() }
func (x sqlRows) Scan(dest ...any) error { return x.r.Scan(dest...) }
func (x sqlRows) Err() error             { return x.r.Err() }
func (x sqlRows) Close()                 { _ = x.r.Close() }
func (x sqlRows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}

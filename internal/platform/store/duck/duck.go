// Package duck opens an embedded DuckDB database through database/sql
package duck

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	perr "brushline/internal/platform/errors"
)

// Config configures the embedded database
// An empty Path opens an in-memory database
type Config struct {
	Path     string
	ReadOnly bool
	Threads  int
}

// DB is a DuckDB handle
type DB struct {
	sql *sql.DB
}

// seam for tests
var sqlOpen = sql.Open

// DSN builds the duckdb connection string for cfg
func DSN(cfg Config) string {
	var q []string
	if cfg.ReadOnly {
		q = append(q, "access_mode=READ_ONLY")
	}
	if cfg.Threads > 0 {
		q = append(q, "threads="+strconv.Itoa(cfg.Threads))
	}
	dsn := strings.TrimSpace(cfg.Path)
	if len(q) > 0 {
		dsn += "?" + strings.Join(q, "&")
	}
	return dsn
}

// Open opens the database and pings it
func Open(ctx context.Context, cfg Config) (*DB, error) {
	db, err := sqlOpen("duckdb", DSN(cfg))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "duckdb: open")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "duckdb: ping")
	}
	return &DB{sql: db}, nil
}

// Wrap adopts an already open handle
func Wrap(db *sql.DB) *DB { return &DB{sql: db} }

// Query runs a read
func (d *DB) Query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	r, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "duckdb: query")
	}
	return r, nil
}

// Exec runs a statement without results
func (d *DB) Exec(ctx context.Context, q string, args ...any) error {
	if _, err := d.sql.ExecContext(ctx, q, args...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "duckdb: exec")
	}
	return nil
}

// Ping checks the handle
func (d *DB) Ping(ctx context.Context) error { return d.sql.PingContext(ctx) }

// Close closes the handle
func (d *DB) Close() error { return d.sql.Close() }

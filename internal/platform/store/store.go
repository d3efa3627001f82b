// Package store opens the optional storage backends behind small seams
package store

import (
	"context"
	"errors"
	"fmt"

	"brushline/internal/platform/logger"
)

// Store is the facade over configured backends
// zero value is safe but holds nothing
type Store struct {
	Log logger.Logger

	// PG holds saved selections, nil when disabled
	PG TxRunner
	// CH is the ClickHouse analytics source, nil when disabled
	CH Analytics
	// Duck is the embedded DuckDB analytics source, nil when disabled
	Duck Analytics
}

// Row scans a single row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Analytics is a read-mostly columnar source
type Analytics interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the backends enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = c
	}
	if cfg.Duck.Enabled {
		d, err := openDuck(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Duck = d
	}
	return s, nil
}

// Guard pings every configured backend that can be pinged
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	seams := []struct {
		name string
		v    any
	}{{"pg", s.PG}, {"clickhouse", s.CH}, {"duckdb", s.Duck}}

	var errs []error
	for _, sm := range seams {
		if p, ok := sm.v.(Pinger); ok && p != nil {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sm.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every open backend; nil backends are skipped
func (s *Store) Close(_ context.Context) error {
	var errs []error
	for _, c := range []any{s.CH, s.Duck, s.PG} {
		if cl, ok := c.(interface{ Close() error }); ok && cl != nil {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Package pg opens a pgx pool and carries an optional query tracer
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	perr "brushline/internal/platform/errors"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	MinConns int32
	AppName  string
	// SlowMs marks queries at or above this latency as slow; negative disables
	SlowMs int
}

// PG is a pool plus tracing knobs read by the store adapter
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option mutates the parsed pool config before dialing
type Option func(*pgxpool.Config)

// seam for tests
var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds a pool; it does not wait for the server
func Open(ctx context.Context, cfg Config, tracer QueryTracer, opts ...Option) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "pg: parse url")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	for _, o := range opts {
		o(pcfg)
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "pg: new pool")
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

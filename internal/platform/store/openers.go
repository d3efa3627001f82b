package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	perr "brushline/internal/platform/errors"
	chx "brushline/internal/platform/store/ch"
	"brushline/internal/platform/store/duck"
	"brushline/internal/platform/store/pg"
)

// openPG builds the pool and waits for the server with exponential backoff
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	retries := cfg.PG.ConnectRetries
	if retries <= 0 {
		retries = 8
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 150 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		// ping the pool directly so boot pings stay out of the sql trace
		return p.Pool.Ping(pctx)
	}
	notify := func(err error, wait time.Duration) {
		s.Log.Warn().Err(err).Dur("retry_in", wait).Msg("postgres not ready")
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		p.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "postgres ping failed after %d retries", retries)
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config) (Analytics, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:         cfg.CH.URL,
		DialTimeout: cfg.CH.DialTimeout,
		MaxOpen:     cfg.CH.MaxOpen,
		ClientName:  cfg.Role,
		ClientTag:   cfg.Tag,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openDuck(ctx context.Context, cfg Config) (Analytics, error) {
	d, err := duck.Open(ctx, duck.Config{
		Path:     cfg.Duck.Path,
		ReadOnly: cfg.Duck.ReadOnly,
		Threads:  cfg.Duck.Threads,
	})
	if err != nil {
		return nil, err
	}
	return NewDuckAdapter(d), nil
}

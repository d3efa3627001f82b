// Package ch wraps the native ClickHouse driver behind a small query seam
package ch

import (
	"context"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	perr "brushline/internal/platform/errors"
)

// Config configures the ClickHouse connection
// URL is a clickhouse:// DSN; Addr and the auth fields override it when set
type Config struct {
	URL      string
	Addr     []string
	Database string
	Username string
	Password string

	DialTimeout time.Duration
	MaxOpen     int

	// ClientName and ClientTag are reported in system.query_log
	ClientName string
	ClientTag  string
}

// Rows is the result set surface the store adapter needs
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH is a pooled native connection
type CH struct {
	conn driver.Conn
}

// seam for tests
var openConn = clickhouse.Open

// Options turns cfg into driver options
func Options(cfg Config) (*clickhouse.Options, error) {
	opts := &clickhouse.Options{}
	if u := strings.TrimSpace(cfg.URL); u != "" {
		parsed, err := clickhouse.ParseDSN(u)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "ch: parse dsn")
		}
		opts = parsed
	}
	if len(cfg.Addr) > 0 {
		opts.Addr = cfg.Addr
	}
	if len(opts.Addr) == 0 {
		return nil, perr.InvalidArgf("ch: no address configured")
	}
	if cfg.Database != "" {
		opts.Auth.Database = cfg.Database
	}
	if cfg.Username != "" {
		opts.Auth.Username = cfg.Username
	}
	if cfg.Password != "" {
		opts.Auth.Password = cfg.Password
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.MaxOpen > 0 {
		opts.MaxOpenConns = cfg.MaxOpen
	}
	opts.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)
	if opts.Settings == nil {
		opts.Settings = clickhouse.Settings{}
	}
	opts.Settings["send_logs_level"] = "none"
	return opts, nil
}

// Open dials ClickHouse and verifies the connection with a ping
func Open(ctx context.Context, cfg Config) (*CH, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := openConn(opts)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "ch: open")
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "ch: ping")
	}
	return &CH{conn: conn}, nil
}

// Query runs a read and returns its rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "ch: query")
	}
	return r, nil
}

// Exec runs a statement without results
func (c *CH) Exec(ctx context.Context, sql string, args ...any) error {
	if err := c.conn.Exec(ctx, sql, args...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "ch: exec")
	}
	return nil
}

// Ping checks connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close releases the pool
func (c *CH) Close() error { return c.conn.Close() }

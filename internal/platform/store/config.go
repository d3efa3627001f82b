package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string
	// Role and Tag identify this process to ClickHouse
	Role string
	Tag  string

	PG   PGConfig
	CH   CHConfig
	Duck DuckConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop; 0 means 8
	ConnectRetries int
	// PingTimeout bounds each ping; 0 means 3s
	PingTimeout time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled     bool
	URL         string
	DialTimeout time.Duration
	MaxOpen     int
}

// DuckConfig configures the embedded duckdb source
type DuckConfig struct {
	Enabled  bool
	Path     string
	ReadOnly bool
	Threads  int
}

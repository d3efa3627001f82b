package module

import (
	"time"

	"brushline/internal/core/overlay"
	"brushline/internal/platform/config"
	"brushline/internal/services/api/timeline/repo"
	svc "brushline/internal/services/api/timeline/service"
)

// Options controls the timeline module
type Options struct {
	// Source names the analytics backend: clickhouse or duckdb
	Source string

	Service svc.Options

	StatsURL     string
	StatsTimeout time.Duration
	StatsRetries int

	SchemaTimeout time.Duration
}

// FromConfig reads with TIMELINE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TIMELINE_")
	formula := overlay.Compat
	if c.MayBool("TEXTBOOK_LSQ", false) {
		formula = overlay.Textbook
	}
	return Options{
		Source: c.MayEnum("SOURCE", repo.DuckDB.Name, repo.ClickHouse.Name, repo.DuckDB.Name),
		Service: svc.Options{
			Limit:      c.MayInt("SERIES_LIMIT", 0),
			Formula:    formula,
			TTL:        c.MayDuration("SESSION_TTL", 30*time.Minute),
			MaxBuckets: c.MayInt("MAX_BUCKETS", 0),
		},
		StatsURL:      c.MayString("STATS_URL", ""),
		StatsTimeout:  c.MayDuration("STATS_TIMEOUT", 10*time.Second),
		StatsRetries:  c.MayInt("STATS_RETRIES", 3),
		SchemaTimeout: c.MayDuration("SCHEMA_TIMEOUT", 5*time.Second),
	}
}

package repo

import (
	"fmt"
	"regexp"
	"strings"

	"brushline/internal/core/bucket"
	"brushline/internal/core/series"
	perr "brushline/internal/platform/errors"
)

// Dialect renders the handful of expressions that differ between sources
type Dialect struct {
	Name string

	quote func(ident string) string
	trunc func(g bucket.Granularity, col string) string
	ts    func(col string) string
	float func(expr string) string
	str   func(expr string) string
	count string
}

// ClickHouse renders toStartOf* bucket expressions over native DateTime
var ClickHouse = Dialect{
	Name:  "clickhouse",
	quote: func(s string) string { return "`" + s + "`" },
	trunc: func(g bucket.Granularity, col string) string {
		fn := map[bucket.Granularity]string{
			bucket.Hour:  "toStartOfHour",
			bucket.Day:   "toStartOfDay",
			bucket.Month: "toStartOfMonth",
			bucket.Year:  "toStartOfYear",
		}[g]
		return fmt.Sprintf("toDateTime(%s(toDateTime(%s, 'UTC')), 'UTC')", fn, col)
	},
	ts:    func(col string) string { return fmt.Sprintf("toDateTime(%s, 'UTC')", col) },
	float: func(e string) string { return "toFloat64(" + e + ")" },
	str:   func(e string) string { return "ifNull(toString(" + e + "), '')" },
	count: "count()",
}

// DuckDB renders date_trunc bucket expressions
var DuckDB = Dialect{
	Name:  "duckdb",
	quote: func(s string) string { return `"` + s + `"` },
	trunc: func(g bucket.Granularity, col string) string {
		return fmt.Sprintf("CAST(date_trunc('%s', %s) AS TIMESTAMP)", g, col)
	},
	ts:    func(col string) string { return "CAST(" + col + " AS TIMESTAMP)" },
	float: func(e string) string { return "CAST(" + e + " AS DOUBLE)" },
	str:   func(e string) string { return "coalesce(CAST(" + e + " AS VARCHAR), '')" },
	count: "count(*)",
}

// DialectFor returns the dialect registered under name
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ClickHouse.Name:
		return ClickHouse, nil
	case DuckDB.Name:
		return DuckDB, nil
	}
	return Dialect{}, perr.InvalidArgf("unknown timeline source %q", name)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})?$`)

// ValidIdent reports whether s is a plain or schema-qualified identifier
func ValidIdent(s string) bool { return identRe.MatchString(s) }

// ident quotes each dotted part of s
func (d Dialect) ident(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = d.quote(p)
	}
	return strings.Join(parts, ".")
}

// agg renders the per-bucket aggregate for k; count ignores the value column
func (d Dialect) agg(k series.Kind, value string) string {
	if k == series.Count || value == "" {
		return d.float(d.count)
	}
	col := d.ident(value)
	switch k {
	case series.Sum:
		return d.float("sum(" + col + ")")
	case series.Avg:
		return d.float("avg(" + col + ")")
	case series.Min:
		return d.float("min(" + col + ")")
	case series.Max:
		return d.float("max(" + col + ")")
	}
	return d.float(d.count)
}

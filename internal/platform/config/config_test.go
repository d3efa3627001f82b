package config

import (
	"slices"
	"testing"
	"time"

	kit "brushline/internal/platform/testkit"
)

func TestPrefixNests(t *testing.T) {
	t.Parallel()

	tl := New().Prefix("BRUSHLINE_").Prefix("TIMELINE_")
	if got := tl.key("SOURCE"); got != "BRUSHLINE_TIMELINE_SOURCE" {
		t.Fatalf("key = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("CFGT_")
	t.Setenv("CFGT_DBURL", "  postgres://localhost/brushline ")
	if got := c.MustString("DBURL"); got != "postgres://localhost/brushline" {
		t.Fatalf("MustString = %q", got)
	}
	t.Setenv("CFGT_BLANK", "   ")
	kit.MustPanic(t, func() { _ = c.MustString("BLANK") })
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayScalars(t *testing.T) {
	c := New().Prefix("CFGS_")
	t.Setenv("CFGS_PATH", " /data/events.duckdb ")
	t.Setenv("CFGS_THREADS", " 4 ")
	t.Setenv("CFGS_BAD_INT", "four")
	t.Setenv("CFGS_READ_ONLY", "true")
	t.Setenv("CFGS_BAD_BOOL", "yep")
	t.Setenv("CFGS_TTL", "45m")
	t.Setenv("CFGS_BAD_TTL", "soon")

	if got := c.MayString("PATH", ":memory:"); got != "/data/events.duckdb" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayString("NOPE", ":memory:"); got != ":memory:" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("THREADS", 1); got != 4 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("BAD_INT", 1); got != 1 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
	if !c.MayBool("READ_ONLY", false) || !c.MayBool("BAD_BOOL", true) || c.MayBool("NOPE", false) {
		t.Fatalf("MayBool mismatch")
	}
	if got := c.MayDuration("TTL", time.Minute); got != 45*time.Minute {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BAD_TTL", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration invalid = %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CFGC_")
	t.Setenv("CFGC_ORIGINS", " https://a.example , ,https://b.example,")
	t.Setenv("CFGC_EMPTY", " , , ")

	if got := c.MayCSV("ORIGINS", nil); !slices.Equal(got, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("MayCSV = %v", got)
	}
	def := []string{"*"}
	if got := c.MayCSV("EMPTY", def); !slices.Equal(got, def) {
		t.Fatalf("all blank = %v, want default", got)
	}
	if got := c.MayCSV("MISSING", def); !slices.Equal(got, def) {
		t.Fatalf("missing = %v, want default", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("CFGE_")
	t.Setenv("CFGE_SOURCE", "ClickHouse")
	t.Setenv("CFGE_BAD", "sqlite")

	if got := c.MayEnum("SOURCE", "duckdb", "clickhouse", "duckdb"); got != "clickhouse" {
		t.Fatalf("MayEnum = %q, want canonical clickhouse", got)
	}
	if got := c.MayEnum("MISSING", "duckdb", "clickhouse", "duckdb"); got != "duckdb" {
		t.Fatalf("MayEnum default = %q", got)
	}
	if got := c.MayEnum("MISSING", "", "clickhouse"); got != "" {
		t.Fatalf("empty default = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "duckdb", "clickhouse", "duckdb") })
}

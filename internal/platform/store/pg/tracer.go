package pg

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"brushline/internal/platform/logger"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// TracerFunc adapts a func to QueryTracer
type TracerFunc func(ctx context.Context, ev QueryEvent)

func (f TracerFunc) OnQuery(ctx context.Context, ev QueryEvent) { f(ctx, ev) }

// Tracer logs statements on root regardless of the process level
// slow ones at warn, failures at error
func Tracer(root logger.Logger) QueryTracer {
	l := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return TracerFunc(func(_ context.Context, ev QueryEvent) {
		evt := l.Info()
		switch {
		case ev.Err != nil:
			evt = l.Error().Err(ev.Err)
		case ev.Slow:
			evt = l.Warn()
		}
		evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
			Bool("slow", ev.Slow).
			Str("sql", Compact(ev.SQL)).
			Int("args", len(ev.Args)).
			Msg("pg query")
	})
}

// Compact folds runs of whitespace into single spaces
func Compact(sql string) string { return strings.Join(strings.Fields(sql), " ") }

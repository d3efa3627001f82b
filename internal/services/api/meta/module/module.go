// Package module mounts the meta endpoints
package module

import (
	"time"

	"brushline/internal/modkit"
	"brushline/internal/modkit/httpkit"
	"brushline/internal/modkit/module"
	"brushline/internal/platform/store"
	str "brushline/internal/platform/strings"

	metahttp "brushline/internal/services/api/meta/http"
	"brushline/internal/services/api/timeline/domain"
	timelinemod "brushline/internal/services/api/timeline/module"
)

// Module implements modkit.Module for /meta
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the meta module; the timeline port is looked up per request
// so module order in the registry does not matter
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		b: b,
		deps: metahttp.Deps{
			StartedAt: time.Now(),
			Backends: []metahttp.Backend{
				backend("postgres", deps.PG),
				backend("clickhouse", deps.CH),
				backend("duckdb", deps.Duck),
			},
			Timeline: timelineStats,
		},
	}
}

func timelineStats() (func() domain.Stats, bool) {
	p, ok := module.PortsAs[timelinemod.StatsPort]("timeline")
	if !ok {
		return nil, false
	}
	return p.Stats, true
}

// backend reports skipped for a nil store or one that cannot ping
func backend(name string, v any) metahttp.Backend {
	p, _ := v.(store.Pinger)
	return metahttp.Backend{Name: name, Pinger: p}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Ports implements modkit.Module; meta exports nothing
func (m *Module) Ports() any { return nil }

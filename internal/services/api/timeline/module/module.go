// Package module wires timeline sessions into the API using modkit
package module

import (
	"context"

	"brushline/internal/core/overlay"
	"brushline/internal/modkit"
	"brushline/internal/modkit/httpkit"
	"brushline/internal/modkit/repokit"
	"brushline/internal/platform/logger"
	"brushline/internal/platform/net/middleware"
	"brushline/internal/platform/store"
	str "brushline/internal/platform/strings"
	tlhttp "brushline/internal/services/api/timeline/http"
	tlrepo "brushline/internal/services/api/timeline/repo"
	tlsvc "brushline/internal/services/api/timeline/service"
)

// Module implements the timeline module
type Module struct {
	b     modkit.Built
	svc   tlsvc.Service
	ports adaptTimelinePort
}

// New constructs the timeline module; it panics when the configured source is missing
func New(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("timeline"),
		modkit.WithPrefix("/timeline"),
		modkit.WithMiddlewares(middleware.AllowContentType("application/json")),
	}, opts...)...)
	log := logger.Named("timeline")

	dialect, err := tlrepo.DialectFor(o.Source)
	if err != nil {
		panic(err.Error())
	}
	db := source(deps, dialect)
	if db == nil {
		panic("timeline module requires a " + dialect.Name + " store")
	}

	var sopts []tlsvc.Option
	if deps.PG != nil {
		ctx, cancel := context.WithTimeout(context.Background(), o.SchemaTimeout)
		err := tlrepo.EnsureSchema(ctx, deps.PG)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("saved selections disabled")
		} else {
			sopts = append(sopts, tlsvc.WithSaved(repokit.MustBind(tlrepo.NewPG(), deps.PG)))
		}
	}
	if o.StatsURL != "" {
		rc, err := overlay.NewRemote(overlay.RemoteOptions{
			BaseURL:    o.StatsURL,
			Timeout:    o.StatsTimeout,
			MaxRetries: o.StatsRetries,
		})
		if err != nil {
			log.Warn().Err(err).Msg("remote overlays disabled")
		} else {
			sopts = append(sopts, tlsvc.WithRemote(rc, rc))
		}
	}

	svc := tlsvc.New(tlrepo.NewAnalytics(db, dialect), o.Service, sopts...)
	log.Info().Str("source", dialect.Name).Int("options", len(sopts)).Msg("timeline ready")

	return &Module{b: b, svc: svc, ports: adaptTimelinePort{svc: svc}}
}

func source(deps modkit.Deps, d tlrepo.Dialect) store.Analytics {
	if d.Name == tlrepo.ClickHouse.Name {
		return deps.CH
	}
	return deps.Duck
}

// MountRoutes mounts the session endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { tlhttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Package api composes the brushline HTTP surface
package api

import (
	"brushline/internal/platform/config"
	phttp "brushline/internal/platform/net/http"
	"brushline/internal/platform/store"

	"brushline/internal/modkit"
	"brushline/internal/modkit/httpkit"
	"brushline/internal/modkit/module"
	"brushline/internal/modkit/swaggerkit"

	metamod "brushline/internal/services/api/meta/module"
	timelinemod "brushline/internal/services/api/timeline/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Timeline       timelinemod.Options
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API onto r; r must not have routes yet
func Mount(r phttp.Router, opt Options) {
	deps := modkit.DepsFrom(opt.Config, opt.Store)

	r.Use(httpkit.RootStack()...)
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := []module.Module{
		metamod.New(deps),
		timelinemod.New(deps, opt.Timeline),
	}
	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config)), func(api httpkit.Router) {
		module.MountAll(api, mods...)
	})
}

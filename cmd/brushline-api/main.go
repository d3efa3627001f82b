// @title         Brushline API
// @version       0.1.0
// @description   Time bucketing, brush selection and hover sync for two-view time series charts

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"brushline/internal/modkit/repokit"
	"brushline/internal/platform/config"
	"brushline/internal/platform/logger"
	phttp "brushline/internal/platform/net/http"
	"brushline/internal/platform/store"

	"brushline/internal/services/api"
	timelinemod "brushline/internal/services/api/timeline/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // saved selections, optional
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // analytics source when TIMELINE_SOURCE=clickhouse
	duckCfg := root.Prefix("SERVICE_DUCKDB_")   // analytics source when TIMELINE_SOURCE=duckdb
	// bring up logging early
	l := logger.Get()

	tl := timelinemod.FromConfig(root)

	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "brushline",
			Role:    "brushline",
			Tag:     "api",
			PG: store.PGConfig{
				Enabled:     pgCfg.MayString("DBURL", "") != "",
				URL:         pgCfg.MayString("DBURL", ""),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled: tl.Source == "clickhouse",
				URL:     chCfg.MayString("DBURL", ""),
				MaxOpen: chCfg.MayInt("MAX_OPEN", 8),
			},
			Duck: store.DuckConfig{
				Enabled:  tl.Source == "duckdb",
				Path:     duckCfg.MayString("PATH", ""),
				ReadOnly: duckCfg.MayBool("READ_ONLY", false),
				Threads:  duckCfg.MayInt("THREADS", 0),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Timeline:       tl,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	// run until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

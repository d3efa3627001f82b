// Package http serves probe, build and engine info under /meta
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"brushline/internal/core/version"
	"brushline/internal/modkit/httpkit"
	"brushline/internal/platform/store"
	"brushline/internal/services/api/timeline/domain"
)

// ProbeTimeout bounds each backend ping on /meta/ready
const ProbeTimeout = 2 * time.Second

// Backend is a named dependency probed by /meta/ready; a nil Pinger is skipped
type Backend struct {
	Name   string
	Pinger store.Pinger
}

// Deps are the handler dependencies
type Deps struct {
	StartedAt time.Time
	Backends  []Backend
	// Timeline resolves the engine stats port at request time; false when unmounted
	Timeline func() (func() domain.Stats, bool)
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/engine", h.engine)
}

// ReadyCheck is one backend probe
type ReadyCheck struct {
	Name    string `json:"name" example:"duckdb"`
	Status  string `json:"status" example:"ok"` // ok fail skipped
	Elapsed int64  `json:"elapsed_ms" example:"3"`
	Error   string `json:"error,omitempty" example:"dial tcp 127.0.0.1:9000: connect: connection refused"`
}

// ReadyResponse rolls the probes up; any failure fails the whole
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Uptime int64        `json:"uptime_seconds" example:"300"`
}

// EngineResponse reports the timeline engine settings
type EngineResponse struct {
	Mounted  bool          `json:"mounted" example:"true"`
	Timeline *domain.Stats `json:"timeline,omitempty"`
}

// @Summary Readiness probe over the configured backends
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	checks := make([]ReadyCheck, len(h.deps.Backends))
	g, ctx := errgroup.WithContext(r.Context())
	for i, b := range h.deps.Backends {
		checks[i] = ReadyCheck{Name: b.Name, Status: "skipped"}
		if b.Pinger == nil {
			continue
		}
		g.Go(func() error {
			pctx, cancel := stdctx.WithTimeout(ctx, ProbeTimeout)
			defer cancel()
			start := h.now()
			err := b.Pinger.Ping(pctx)
			checks[i].Elapsed = h.now().Sub(start).Milliseconds()
			checks[i].Status = "ok"
			if err != nil {
				checks[i].Status, checks[i].Error = "fail", err.Error()
			}
			// a failed probe must not cancel its siblings
			return nil
		})
	}
	_ = g.Wait()

	out := ReadyResponse{Status: "ok", Checks: checks, Uptime: int64(h.now().Sub(h.deps.StartedAt) / time.Second)}
	for _, c := range checks {
		if c.Status == "fail" {
			out.Status = "fail"
		}
	}
	return out, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Timeline engine settings and live session count
// @Tags Meta
// @Produce json
// @Success 200 {object} EngineResponse "ok"
// @Router /meta/engine [get]
func (h *handlers) engine(_ *http.Request) (any, error) {
	if h.deps.Timeline == nil {
		return EngineResponse{}, nil
	}
	stats, ok := h.deps.Timeline()
	if !ok {
		return EngineResponse{}, nil
	}
	s := stats()
	return EngineResponse{Mounted: true, Timeline: &s}, nil
}

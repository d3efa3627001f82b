// Package http provides http transport for timeline sessions
package http

import (
	stdhttp "net/http"

	"brushline/internal/modkit/httpkit"
	"brushline/internal/platform/net/http/bind"
	"brushline/internal/services/api/timeline/domain"
)

// optional bodies may be empty or {}
var optionalBody = bind.JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true, AllowEmptyBody: true}

// Register mounts timeline endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	registerValidators()
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.CreateInput](r, "/sessions", h.create)
	httpkit.Get(r, "/sessions/{id}", h.get)
	httpkit.Delete(r, "/sessions/{id}", h.delete)

	r.Post("/sessions/{id}/series", httpkit.JSON(h.series, optionalBody))

	httpkit.Post(r, "/sessions/{id}/brush/start", h.brushStart)
	httpkit.PostJSON[domain.BrushInput](r, "/sessions/{id}/brush", h.brush)
	httpkit.PostJSON[domain.GranularityInput](r, "/sessions/{id}/granularity", h.granularity)
	httpkit.PostJSON[domain.FilterInput](r, "/sessions/{id}/filter", h.filter)

	httpkit.PostJSON[domain.HoverInput](r, "/sessions/{id}/hover", h.hover)
	httpkit.PostJSON[domain.HoverOffInput](r, "/sessions/{id}/hover/off", h.hoverOff)

	httpkit.PostJSON[domain.SaveInput](r, "/sessions/{id}/saved", h.save)
	httpkit.Get(r, "/sessions/{id}/saved", h.listSaved)
	httpkit.Post(r, "/sessions/{id}/saved/{savedID}/apply", h.applySaved)
	httpkit.Delete(r, "/sessions/{id}/saved/{savedID}", h.deleteSaved)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /timeline/sessions Timeline timelineCreate
// @Summary Open a chart session over a dataset
// @Tags Timeline
// @Accept json
// @Produce json
// @Param payload body domain.CreateInput true "Dataset and chart options"
// @Success 201 {object} domain.SessionOutput "created"
// @Router /timeline/sessions [post]
func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	out, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary Session state
// @Tags Timeline
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SessionOutput "ok"
// @Router /timeline/sessions/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}

// @Summary Close a session
// @Tags Timeline
// @Param id path string true "Session id"
// @Success 204 "closed"
// @Router /timeline/sessions/{id} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary Fetch and aggregate series at the current granularity
// @Description A failed query returns empty series with a warning. A request overtaken by a newer one for the same session returns 409.
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.SeriesInput false "Overlays"
// @Success 200 {object} domain.SeriesOutput "ok"
// @Router /timeline/sessions/{id}/series [post]
func (h *handlers) series(r *stdhttp.Request, in domain.SeriesInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Series(r.Context(), id, in)
}

// @Summary Record the extent at brush start
// @Tags Timeline
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} domain.SelectionOutput "ok"
// @Router /timeline/sessions/{id}/brush/start [post]
func (h *handlers) brushStart(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.BrushStart(r.Context(), id)
}

// @Summary Snap a finished brush
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.BrushInput true "Raw extent"
// @Success 200 {object} domain.SelectionOutput "ok"
// @Router /timeline/sessions/{id}/brush [post]
func (h *handlers) brush(r *stdhttp.Request, in domain.BrushInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Brush(r.Context(), id, in)
}

// @Summary Change the bucket granularity
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.GranularityInput true "Granularity"
// @Success 200 {object} domain.SelectionOutput "ok"
// @Router /timeline/sessions/{id}/granularity [post]
func (h *handlers) granularity(r *stdhttp.Request, in domain.GranularityInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Granularity(r.Context(), id, in)
}

// @Summary Apply a filter set by another component
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.FilterInput true "Extent, [] clears"
// @Success 200 {object} domain.SelectionOutput "ok"
// @Router /timeline/sessions/{id}/filter [post]
func (h *handlers) filter(r *stdhttp.Request, in domain.FilterInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Filter(r.Context(), id, in)
}

// @Summary Resolve the hovered bucket
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.HoverInput true "Pointer position"
// @Success 200 {object} domain.HoverOutput "ok"
// @Router /timeline/sessions/{id}/hover [post]
func (h *handlers) hover(r *stdhttp.Request, in domain.HoverInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Hover(r.Context(), id, in)
}

// @Summary Pointer left a view
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.HoverOffInput true "View"
// @Success 200 {object} domain.HoverOutput "ok"
// @Router /timeline/sessions/{id}/hover/off [post]
func (h *handlers) hoverOff(r *stdhttp.Request, in domain.HoverOffInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.HoverOff(r.Context(), id, in)
}

// @Summary Save the active selection
// @Tags Timeline
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param payload body domain.SaveInput true "Name"
// @Success 201 {object} domain.Saved "created"
// @Router /timeline/sessions/{id}/saved [post]
func (h *handlers) save(r *stdhttp.Request, in domain.SaveInput) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	out, err := h.svc.Save(r.Context(), id, in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// @Summary Saved selections of the session's dataset
// @Tags Timeline
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {array} domain.Saved "ok, with page beside data"
// @Router /timeline/sessions/{id}/saved [get]
func (h *handlers) listSaved(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	items, err := h.svc.ListSaved(r.Context(), id)
	if err != nil {
		return nil, err
	}
	// the store caps the list, so a single page carries all of it
	return httpkit.List(items, len(items), 1, len(items), ""), nil
}

// @Summary Apply a saved selection as an external filter
// @Tags Timeline
// @Produce json
// @Param id path string true "Session id"
// @Param savedID path string true "Saved selection id"
// @Success 200 {object} domain.SelectionOutput "ok"
// @Router /timeline/sessions/{id}/saved/{savedID}/apply [post]
func (h *handlers) applySaved(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	savedID, err := httpkit.Param(r, "savedID")
	if err != nil {
		return nil, err
	}
	return h.svc.ApplySaved(r.Context(), id, savedID)
}

// @Summary Delete a saved selection of the session's dataset
// @Tags Timeline
// @Param id path string true "Session id"
// @Param savedID path string true "Saved selection id"
// @Success 204 "deleted"
// @Router /timeline/sessions/{id}/saved/{savedID} [delete]
func (h *handlers) deleteSaved(r *stdhttp.Request) (any, error) {
	id, err := httpkit.Param(r, "id")
	if err != nil {
		return nil, err
	}
	savedID, err := httpkit.Param(r, "savedID")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteSaved(r.Context(), id, savedID); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

package module

import (
	"context"

	"brushline/internal/services/api/timeline/domain"
	tlsvc "brushline/internal/services/api/timeline/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// StatsPort is looked up by the meta module
type StatsPort interface {
	Stats() domain.Stats
}

type adaptTimelinePort struct{ svc tlsvc.Service }

// Stats reports live sessions and engine settings
func (a adaptTimelinePort) Stats() domain.Stats { return a.svc.Stats() }

// Filter pushes a filter set by another component into a session
func (a adaptTimelinePort) Filter(ctx context.Context, id string, in domain.FilterInput) (domain.SelectionOutput, error) {
	return a.svc.Filter(ctx, id, in)
}

// Saved lists the saved selections of a session's dataset
func (a adaptTimelinePort) Saved(ctx context.Context, id string) ([]domain.Saved, error) {
	return a.svc.ListSaved(ctx, id)
}

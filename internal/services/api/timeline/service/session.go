package service

import (
	"sync"
	"time"

	"brushline/internal/core/bucket"
	"brushline/internal/core/dualview"
	"brushline/internal/core/hover"
	"brushline/internal/core/latest"
	"brushline/internal/core/refrange"
	"brushline/internal/core/selection"
	"brushline/internal/core/series"
	"brushline/internal/services/api/timeline/domain"
	"brushline/internal/services/api/timeline/repo"
)

// hover views of one chart
const (
	viewContext = "context"
	viewFocus   = "focus"
)

// session is one chart instance; mu serializes every mutation
type session struct {
	id    string
	ds    domain.Dataset
	kind  series.Kind
	name  string
	limit int
	src   repo.Source

	// seen is guarded by Svc.mu
	seen time.Time

	mu       sync.Mutex
	rng      refrange.Range
	state    *selection.State
	view     *dualview.Sync
	res      *series.Result
	resolver *hover.Resolver
	views    map[string]*hover.Participant
	tr       latest.Tracker
	events   []domain.Event
}

func newSession(id string, ds domain.Dataset, kind series.Kind, name string, limit int, src repo.Source, rng refrange.Range, b bucket.Bucketizer, width float64) *session {
	s := &session{id: id, ds: ds, kind: kind, name: name, limit: limit, src: src, rng: rng}
	s.state = selection.New(b, s)
	s.view = dualview.New(s.state, width)
	s.resolver = hover.NewResolver(b)
	s.res = series.Empty(b, s.seriesOpts())
	s.view.SetSeries(s.res.Series)

	ch := hover.NewChannel()
	s.views = map[string]*hover.Participant{
		viewContext: ch.Join(viewContext, nil),
		viewFocus:   ch.Join(viewFocus, nil),
	}
	return s
}

func (s *session) OnSelectionChanged(e selection.Extent) {
	s.events = append(s.events, domain.Event{Type: domain.EventChanged, Extent: e})
}

func (s *session) OnSelectionCleared() {
	s.events = append(s.events, domain.Event{Type: domain.EventCleared})
}

// drain hands out the events queued since the last call
func (s *session) drain() []domain.Event {
	ev := s.events
	s.events = nil
	if ev == nil {
		return []domain.Event{}
	}
	return ev
}

func (s *session) seriesOpts() series.Options {
	return series.Options{
		Kind:    s.kind,
		Limit:   s.limit,
		Grouped: s.ds.GroupField != "",
		Name:    s.name,
	}
}

// rebucket swaps in b; loaded series no longer line up so they reset to empty
func (s *session) rebucket(b bucket.Bucketizer) {
	s.tr.Invalidate()
	s.state.SetGranularity(b)
	s.resolver = hover.NewResolver(b)
	s.res = series.Empty(b, s.seriesOpts())
	s.view.SetSeries(s.res.Series)
}

func (s *session) close() {
	s.tr.Invalidate()
	for _, p := range s.views {
		p.Leave()
	}
}

// datasetKey names the dataset saved selections belong to
func datasetKey(ds domain.Dataset) string { return ds.Table + "." + ds.DateField }

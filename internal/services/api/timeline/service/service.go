// Package service runs timeline chart sessions over the core engine
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"brushline/internal/core/bucket"
	"brushline/internal/core/overlay"
	"brushline/internal/core/refrange"
	"brushline/internal/core/selection"
	"brushline/internal/core/series"
	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/logger"
	pnet "brushline/internal/platform/net"
	"brushline/internal/services/api/timeline/domain"
	"brushline/internal/services/api/timeline/repo"
)

// ErrSuperseded is returned to a request whose result lost to a newer one
var ErrSuperseded = perr.Newf(perr.ErrorCodeConflict, "superseded by a newer request")

const (
	defaultTTL   = 30 * time.Minute
	defaultWidth = 960
)

// Service defines the timeline service contract
type Service interface {
	domain.ServicePort
	Stats() domain.Stats
}

// Options tunes sessions
type Options struct {
	// Limit caps named series; 0 means series.DefaultLimit
	Limit int
	// Formula picks the trendline denominator
	Formula overlay.Formula
	// TTL expires idle sessions; 0 means 30m
	TTL time.Duration
	// MaxBuckets bounds automatic granularity; 0 means bucket.DefaultMaxBuckets
	MaxBuckets int
}

// Svc implements the timeline service
type Svc struct {
	analytics *repo.Analytics
	saved     repo.SavedRepo
	trender   overlay.Trender
	detector  overlay.Detector
	opts      Options
	log       logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures Svc
type Option func(*Svc)

// WithSaved enables saved selections
func WithSaved(r repo.SavedRepo) Option { return func(s *Svc) { s.saved = r } }

// WithRemote routes trend and anomaly overlays to an external service
func WithRemote(t overlay.Trender, d overlay.Detector) Option {
	return func(s *Svc) { s.trender, s.detector = t, d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option { return func(s *Svc) { s.now = now } }

// New constructs a timeline service over an analytics backend
func New(a *repo.Analytics, o Options, opts ...Option) *Svc {
	if a == nil {
		panic("timeline.Service requires a non nil Analytics")
	}
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.MaxBuckets <= 0 {
		o.MaxBuckets = bucket.DefaultMaxBuckets
	}
	s := &Svc{
		analytics: a,
		opts:      o,
		log:       *logger.Named("timeline"),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Create loads the reference range of a dataset and opens a session over it
func (s *Svc) Create(ctx context.Context, in domain.CreateInput) (domain.SessionOutput, error) {
	kind := series.Count
	if in.Aggregation != "" {
		k, err := series.ParseKind(in.Aggregation)
		if err != nil {
			return domain.SessionOutput{}, err
		}
		kind = k
	}
	if kind != series.Count && in.Dataset.ValueField == "" {
		return domain.SessionOutput{}, perr.InvalidArgf("aggregation %s needs a value_field", kind)
	}

	src, err := s.analytics.For(in.Dataset)
	if err != nil {
		return domain.SessionOutput{}, err
	}

	loader := refrange.NewLoader(func(r refrange.Range, err error) {
		s.log.Debug().Err(err).Str("table", in.Dataset.Table).Time("start", r.Start).Time("end", r.End).
			Bool("empty", r.Empty).Msg("reference range loaded")
	})
	rng, err := loader.Load(ctx, src)
	if err != nil {
		return domain.SessionOutput{}, err
	}

	var b bucket.Bucketizer
	switch {
	case in.Granularity != "":
		g, err := bucket.ParseGranularity(in.Granularity)
		if err != nil {
			return domain.SessionOutput{}, err
		}
		if b, err = s.bucketize(rng, g); err != nil {
			return domain.SessionOutput{}, err
		}
	case !rng.Empty:
		g := bucket.Auto(rng.Start, rng.End, s.opts.MaxBuckets)
		if b, err = refrange.Bucketizer(rng, g); err != nil {
			return domain.SessionOutput{}, err
		}
	default:
		if b, err = refrange.Bucketizer(rng, bucket.Day); err != nil {
			return domain.SessionOutput{}, err
		}
	}
	g := b.Granularity()

	width := float64(in.Width)
	if width <= 0 {
		width = defaultWidth
	}
	sess := newSession(uuid.NewString(), in.Dataset, kind, in.Name, s.opts.Limit, src, rng, b, width)

	s.mu.Lock()
	now := s.now()
	s.sweep(now)
	sess.seen = now
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logFor(ctx, sess.id).Info().Str("table", in.Dataset.Table).Str("granularity", g.String()).
		Int("buckets", b.NumBuckets()).Msg("timeline session opened")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.sessionOut(sess, now), nil
}

// Get returns the current state of a session
func (s *Svc) Get(_ context.Context, id string) (domain.SessionOutput, error) {
	sess, seen, err := s.lookup(id)
	if err != nil {
		return domain.SessionOutput{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.sessionOut(sess, seen), nil
}

// Delete drops a session; in-flight fetches are superseded
func (s *Svc) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return perr.NotFoundf("session %s not found", id)
	}
	sess.close()
	return nil
}

// BrushStart records the extent at the start of a drag
func (s *Svc) BrushStart(_ context.Context, id string) (domain.SelectionOutput, error) {
	return s.mutate(id, func(sess *session) error {
		sess.state.BrushStart()
		return nil
	})
}

// Brush snaps a finished drag and reports the outbound events it caused
func (s *Svc) Brush(_ context.Context, id string, in domain.BrushInput) (domain.SelectionOutput, error) {
	ev := selection.BrushEvent{Raw: in.Extent, Mode: selection.Resize}
	if in.Mode == "move" {
		ev.Mode = selection.Move
	}
	if in.Hovered != nil {
		ev.Hovered = in.Hovered.UTC()
	}
	return s.mutate(id, func(sess *session) error {
		sess.state.BrushEnd(ev)
		return nil
	})
}

// Granularity rebuckets the session and re-snaps the selection
func (s *Svc) Granularity(_ context.Context, id string, in domain.GranularityInput) (domain.SelectionOutput, error) {
	g, err := bucket.ParseGranularity(in.Granularity)
	if err != nil {
		return domain.SelectionOutput{}, err
	}
	return s.mutate(id, func(sess *session) error {
		if sess.state.Bucketizer().Granularity() == g {
			return nil
		}
		b, err := s.bucketize(sess.rng, g)
		if err != nil {
			return err
		}
		sess.rebucket(b)
		return nil
	})
}

// bucketize builds a bucketizer for an explicitly requested granularity and
// refuses one that would exceed MaxBuckets over rng
func (s *Svc) bucketize(rng refrange.Range, g bucket.Granularity) (bucket.Bucketizer, error) {
	b, err := refrange.Bucketizer(rng, g)
	if err != nil {
		return nil, err
	}
	if n := b.NumBuckets(); n > s.opts.MaxBuckets {
		return nil, perr.InvalidArgf("granularity %s gives %d buckets over the reference range, max %d", g, n, s.opts.MaxBuckets)
	}
	return b, nil
}

// Filter reconciles a filter applied elsewhere; it never produces events
func (s *Svc) Filter(_ context.Context, id string, in domain.FilterInput) (domain.SelectionOutput, error) {
	return s.mutate(id, func(sess *session) error {
		sess.state.ApplyExternal(in.Extent)
		return nil
	})
}

// mutate runs fn under the session lock and reports the resulting selection
func (s *Svc) mutate(id string, fn func(*session) error) (domain.SelectionOutput, error) {
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.SelectionOutput{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return domain.SelectionOutput{}, err
	}
	return selectionOut(sess), nil
}

// Stats counts live sessions after a sweep and reports the engine settings
func (s *Svc) Stats() domain.Stats {
	s.mu.Lock()
	s.sweep(s.now())
	n := len(s.sessions)
	s.mu.Unlock()
	return domain.Stats{
		Source:     s.analytics.Dialect().Name,
		Sessions:   n,
		Formula:    s.opts.Formula.String(),
		TTLSeconds: int64(s.opts.TTL / time.Second),
		MaxBuckets: s.opts.MaxBuckets,
		Saved:      s.saved != nil,
		Remote:     s.trender != nil,
	}
}

// lookup sweeps expired sessions, then returns id and marks it used
func (s *Svc) lookup(id string) (*session, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	sess, ok := s.sessions[id]
	if !ok {
		return nil, time.Time{}, perr.NotFoundf("session %s not found", id)
	}
	sess.seen = now
	return sess, now, nil
}

// logFor returns a logger carrying the request and session ids
func (s *Svc) logFor(ctx context.Context, id string) *logger.Logger {
	l := logger.C(logger.WithRequest(ctx, pnet.RequestID(ctx), id)).With().Str("component", "timeline").Logger()
	return &l
}

// sweep drops idle sessions; caller holds s.mu
func (s *Svc) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.seen) > s.opts.TTL {
			delete(s.sessions, id)
			sess.close()
			s.log.Debug().Str("session", id).Msg("timeline session expired")
		}
	}
}

func (s *Svc) sessionOut(sess *session, seen time.Time) domain.SessionOutput {
	b := sess.state.Bucketizer()
	return domain.SessionOutput{
		ID:            sess.id,
		Dataset:       sess.ds,
		Aggregation:   sess.kind,
		Granularity:   b.Granularity().String(),
		Range:         sess.rng,
		Buckets:       b.NumBuckets(),
		Extent:        sess.state.Extent(),
		ContextDomain: sess.view.ContextDomain(),
		FocusDomain:   sess.view.FocusDomain(),
		ContextY:      sess.view.ContextYDomain(),
		FocusY:        sess.view.FocusYDomain(),
		Events:        sess.drain(),
		ExpiresAt:     seen.Add(s.opts.TTL),
	}
}

func selectionOut(sess *session) domain.SelectionOutput {
	return domain.SelectionOutput{
		Extent:      sess.state.Extent(),
		Granularity: sess.state.Bucketizer().Granularity().String(),
		FocusDomain: sess.view.FocusDomain(),
		FocusY:      sess.view.FocusYDomain(),
		Events:      sess.drain(),
	}
}

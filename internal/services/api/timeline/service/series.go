package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"brushline/internal/core/bucket"
	"brushline/internal/core/latest"
	"brushline/internal/core/overlay"
	"brushline/internal/core/series"
	"brushline/internal/services/api/timeline/domain"
	"brushline/internal/services/api/timeline/repo"
)

// overlayWorkers bounds concurrent overlay calls per fetch
const overlayWorkers = 4

// Series fetches rows for the current bucketizer and aggregates them
//
// A failed query yields all-undefined series plus a warning and leaves the
// selection alone. Only the most recent fetch of a session is applied.
func (s *Svc) Series(ctx context.Context, id string, in domain.SeriesInput) (domain.SeriesOutput, error) {
	sess, _, err := s.lookup(id)
	if err != nil {
		return domain.SeriesOutput{}, err
	}

	sess.mu.Lock()
	b := sess.state.Bucketizer()
	opts := sess.seriesOpts()
	tok := sess.tr.Begin(ctx)
	sess.mu.Unlock()

	var out domain.SeriesOutput
	rows, err := s.fetch(tok, sess, b)
	if err != nil {
		if !sess.tr.Current(tok) {
			return domain.SeriesOutput{}, ErrSuperseded
		}
		s.logFor(ctx, sess.id).Warn().Err(err).Msg("series query failed; rendering empty series")
		out.Warning = "query failed: " + err.Error()
		rows = nil
	}

	res, err := series.Aggregate(rows, b, opts)
	if err != nil {
		return domain.SeriesOutput{}, err
	}

	trends, marked, err := s.overlays(tok.Context(), res, in)
	if err != nil {
		if !sess.tr.Current(tok) {
			return domain.SeriesOutput{}, ErrSuperseded
		}
		s.logFor(ctx, sess.id).Warn().Err(err).Msg("overlay failed")
		if out.Warning == "" {
			out.Warning = "overlay unavailable: " + err.Error()
		}
	}

	applied := latest.Apply(&sess.tr, tok, &sess.mu, func() {
		sess.res = res
		sess.view.SetSeries(res.Series)
		out.FocusY = sess.view.FocusYDomain()
	})
	if !applied {
		s.logFor(ctx, sess.id).Debug().Uint64("gen", tok.Gen).Msg("dropping superseded series response")
		return domain.SeriesOutput{}, ErrSuperseded
	}

	out.Granularity = b.Granularity().String()
	out.Buckets = b.NumBuckets()
	out.Series = res.Series
	out.Trends = trends
	out.Excluded = res.Excluded
	out.Anomalies = marked
	return out, nil
}

// fetch queries the whole reference range; an unset bucketizer has no rows
func (s *Svc) fetch(tok latest.Token, sess *session, b bucket.Bucketizer) ([]series.Row, error) {
	start, ok1 := b.StartDate()
	end, ok2 := b.EndDate()
	if !ok1 || !ok2 {
		return nil, nil
	}
	return sess.src.Rows(tok.Context(), repo.RowsQuery{
		Granularity: b.Granularity(),
		Kind:        sess.kind,
		Start:       start,
		End:         end,
	})
}

// overlays computes trends and marks anomalies on the named series of res
// Anomaly detection needs a remote detector and is skipped without one
func (s *Svc) overlays(ctx context.Context, res *series.Result, in domain.SeriesInput) ([]series.Series, int, error) {
	detect := in.Anomalies && s.detector != nil
	if !in.Trend && !detect {
		return nil, 0, nil
	}

	var named []int
	for i := range res.Series {
		if !res.Series[i].Others && res.Series[i].Defined() > 0 {
			named = append(named, i)
		}
	}

	trends := make([]series.Series, len(named))
	found := make([][]overlay.Anomaly, len(named))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overlayWorkers)
	for k, i := range named {
		sr := &res.Series[i]
		if in.Trend {
			g.Go(func() error {
				t, err := s.trend(gctx, sr)
				trends[k] = t
				return err
			})
		}
		if detect {
			g.Go(func() error {
				a, err := s.detector.Detect(gctx, dates(sr), sr.Values())
				found[k] = a
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	marked := 0
	for k, i := range named {
		marked += overlay.Merge(&res.Series[i], found[k])
	}
	if !in.Trend {
		trends = nil
	}
	return trends, marked, nil
}

func (s *Svc) trend(ctx context.Context, sr *series.Series) (series.Series, error) {
	if s.trender == nil {
		return overlay.Trend(sr, s.opts.Formula), nil
	}
	vals, err := s.trender.Trend(ctx, sr.Values())
	if err != nil {
		return series.Series{}, err
	}
	return overlay.FromValues(sr, sr.ID+overlay.TrendSuffix, sr.Label+" trend", vals), nil
}

func dates(sr *series.Series) []time.Time {
	out := make([]time.Time, len(sr.Data))
	for i, p := range sr.Data {
		out[i] = p.Date
	}
	return out
}

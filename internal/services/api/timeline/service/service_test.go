package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"brushline/internal/core/overlay"
	"brushline/internal/core/selection"
	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/store"
	"brushline/internal/services/api/timeline/domain"
	"brushline/internal/services/api/timeline/repo"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

type rowsOf struct {
	data [][]any
	i    int
}

func (r *rowsOf) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *rowsOf) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *time.Time:
			*p = row[i].(time.Time)
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		default:
			return fmt.Errorf("unsupported %T", d)
		}
	}
	return nil
}

func (r *rowsOf) Err() error        { return nil }
func (r *rowsOf) Close()            {}
func (r *rowsOf) Columns() []string { return nil }

// dataset answers edge queries from min/max and bucket queries from rows
type dataset struct {
	mu       sync.Mutex
	min, max time.Time
	empty    bool
	rows     [][]any
	rowsErr  error
	// gate, when set, blocks the first bucket query until its ctx ends
	gate    chan struct{}
	queries atomic.Int32
}

func (d *dataset) Query(ctx context.Context, sql string, _ ...any) (store.Rows, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case strings.Contains(sql, "ASC LIMIT 1"):
		if d.empty {
			return &rowsOf{}, nil
		}
		return &rowsOf{data: [][]any{{d.min}}}, nil
	case strings.Contains(sql, "DESC LIMIT 1"):
		if d.empty {
			return &rowsOf{}, nil
		}
		return &rowsOf{data: [][]any{{d.max}}}, nil
	}

	if d.queries.Add(1) == 1 && d.gate != nil {
		gate := d.gate
		d.mu.Unlock()
		close(gate)
		<-ctx.Done()
		d.mu.Lock()
		return nil, ctx.Err()
	}
	if d.rowsErr != nil {
		return nil, d.rowsErr
	}
	return &rowsOf{data: d.rows}, nil
}

func (d *dataset) Exec(context.Context, string, ...any) error { return nil }
func (d *dataset) Close() error                               { return nil }

func newSvc(t *testing.T, d *dataset, opts ...Option) *Svc {
	t.Helper()
	return New(repo.NewAnalytics(d, repo.DuckDB), Options{}, opts...)
}

func create(t *testing.T, s *Svc, in domain.CreateInput) domain.SessionOutput {
	t.Helper()
	if in.Dataset.Table == "" {
		in.Dataset = domain.Dataset{Table: "events", DateField: "ts"}
	}
	out, err := s.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return out
}

func tenDays() *dataset {
	return &dataset{
		min: time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
		max: time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC),
		rows: [][]any{
			{day(1), 2.0},
			{day(3), 5.0},
			{day(10), 1.0},
		},
	}
}

func TestCreate_LoadsReferenceRange(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	out := create(t, s, domain.CreateInput{Granularity: "day"})

	if out.ID == "" || out.Granularity != "day" || out.Buckets != 10 {
		t.Fatalf("Create = %+v", out)
	}
	if want := selection.Span(day(1), day(11)); !out.ContextDomain.Equal(want) {
		t.Fatalf("context = %v, want %v", out.ContextDomain, want)
	}
	if !out.Extent.IsEmpty() || !out.FocusDomain.Equal(out.ContextDomain) {
		t.Fatalf("fresh session extent=%v focus=%v", out.Extent, out.FocusDomain)
	}
}

func TestCreate_AutoGranularity(t *testing.T) {
	t.Parallel()

	d := tenDays()
	d.max = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	out := create(t, newSvc(t, d), domain.CreateInput{})
	if out.Granularity != "month" {
		t.Fatalf("granularity = %s, want month", out.Granularity)
	}
}

func TestCreate_EmptyDataset(t *testing.T) {
	t.Parallel()

	s := newSvc(t, &dataset{empty: true})
	out := create(t, s, domain.CreateInput{})
	if !out.Range.Empty || out.Buckets != 0 || !out.ContextDomain.IsEmpty() {
		t.Fatalf("empty dataset = %+v", out)
	}

	ser, err := s.Series(context.Background(), out.ID, domain.SeriesInput{Trend: true})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(ser.Series) != 1 || len(ser.Series[0].Data) != 0 {
		t.Fatalf("series = %+v", ser.Series)
	}
}

func TestCreate_RejectsGranularityOverMaxBuckets(t *testing.T) {
	t.Parallel()

	d := tenDays()
	d.min = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	d.max = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	s := newSvc(t, d)
	ds := domain.Dataset{Table: "events", DateField: "ts"}

	_, err := s.Create(context.Background(), domain.CreateInput{Dataset: ds, Granularity: "hour"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("hour over 34 years err = %v, want invalid_argument", err)
	}

	out := create(t, s, domain.CreateInput{Dataset: ds, Granularity: "year"})
	if out.Buckets != 34 {
		t.Fatalf("buckets = %d, want 34", out.Buckets)
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	ds := domain.Dataset{Table: "events", DateField: "ts"}
	if _, err := s.Create(context.Background(), domain.CreateInput{Dataset: ds, Aggregation: "sum"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("sum without value field err = %v", err)
	}
	if _, err := s.Create(context.Background(), domain.CreateInput{Dataset: ds, Granularity: "week"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad granularity err = %v", err)
	}
	bad := domain.Dataset{Table: "events;", DateField: "ts"}
	if _, err := s.Create(context.Background(), domain.CreateInput{Dataset: bad}); err == nil {
		t.Fatalf("expected identifier error")
	}
}

func TestSeries_AggregatesRows(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "day", Name: "Events"}).ID

	out, err := s.Series(context.Background(), id, domain.SeriesInput{Trend: true})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(out.Series) != 1 || out.Series[0].Label != "Events" {
		t.Fatalf("series = %+v", out.Series)
	}
	data := out.Series[0].Data
	if len(data) != 10 || !data[0].Valid || data[1].Valid || data[2].Value != 5 || data[9].Value != 1 {
		t.Fatalf("data = %+v", data)
	}
	if out.FocusY.Hi != 5 || out.FocusY.Lo != 0 {
		t.Fatalf("focus y = %+v", out.FocusY)
	}
	if len(out.Trends) != 1 || len(out.Trends[0].Data) != 10 {
		t.Fatalf("trends = %+v", out.Trends)
	}
	if out.Warning != "" {
		t.Fatalf("warning = %q", out.Warning)
	}
}

func TestSeries_QueryFailureRendersEmpty(t *testing.T) {
	t.Parallel()

	d := tenDays()
	d.rowsErr = errors.New("connection reset")
	s := newSvc(t, d)
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	if _, err := s.Filter(context.Background(), id, domain.FilterInput{Extent: selection.Span(day(2), day(4))}); err != nil {
		t.Fatalf("Filter: %v", err)
	}

	out, err := s.Series(context.Background(), id, domain.SeriesInput{})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if !strings.Contains(out.Warning, "connection reset") {
		t.Fatalf("warning = %q", out.Warning)
	}
	if len(out.Series) != 1 || out.Series[0].Defined() != 0 || len(out.Series[0].Data) != 10 {
		t.Fatalf("series = %+v", out.Series)
	}

	st, _ := s.Get(context.Background(), id)
	if !st.Extent.Equal(selection.Span(day(2), day(4))) {
		t.Fatalf("selection changed after failure: %v", st.Extent)
	}
}

func TestSeries_LastRequestWins(t *testing.T) {
	t.Parallel()

	d := tenDays()
	d.gate = make(chan struct{})
	s := newSvc(t, d)
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	first := make(chan error, 1)
	go func() {
		_, err := s.Series(context.Background(), id, domain.SeriesInput{})
		first <- err
	}()
	<-d.gate

	second, err := s.Series(context.Background(), id, domain.SeriesInput{})
	if err != nil {
		t.Fatalf("second Series: %v", err)
	}
	if len(second.Series[0].Data) != 10 || second.Series[0].Defined() != 3 {
		t.Fatalf("second = %+v", second.Series)
	}

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first err = %v, want superseded", err)
	}
}

type fakeRemote struct {
	trendCalls atomic.Int32
	anomalies  []overlay.Anomaly
	err        error
}

func (f *fakeRemote) Trend(_ context.Context, v []float64) ([]float64, error) {
	f.trendCalls.Add(1)
	out := make([]float64, len(v))
	for i := range out {
		out[i] = 7
	}
	return out, f.err
}

func (f *fakeRemote) Detect(context.Context, []time.Time, []float64) ([]overlay.Anomaly, error) {
	return f.anomalies, f.err
}

func TestSeries_RemoteOverlays(t *testing.T) {
	t.Parallel()

	r := &fakeRemote{anomalies: []overlay.Anomaly{
		{Date: "2024-01-03", IsAnomaly: true},
		{Date: "garbage", IsAnomaly: true},
		{Date: "2024-01-05T00:00:00Z", IsAnomaly: false},
	}}
	s := newSvc(t, tenDays(), WithRemote(r, r))
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	out, err := s.Series(context.Background(), id, domain.SeriesInput{Trend: true, Anomalies: true})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if r.trendCalls.Load() != 1 || out.Trends[0].Data[4].Value != 7 {
		t.Fatalf("remote trend not used: calls=%d trends=%+v", r.trendCalls.Load(), out.Trends)
	}
	if out.Anomalies != 2 || !out.Series[0].Data[2].Anomaly || out.Series[0].Data[4].Anomaly {
		t.Fatalf("anomalies = %d data = %+v", out.Anomalies, out.Series[0].Data)
	}

	r.err = errors.New("stats down")
	out, err = s.Series(context.Background(), id, domain.SeriesInput{Trend: true})
	if err != nil {
		t.Fatalf("Series with failing remote: %v", err)
	}
	if out.Trends != nil || !strings.Contains(out.Warning, "stats down") || out.Series[0].Defined() != 3 {
		t.Fatalf("degraded = %+v", out)
	}
}

func TestBrush_EmitsEvents(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID
	ctx := context.Background()

	if _, err := s.BrushStart(ctx, id); err != nil {
		t.Fatalf("BrushStart: %v", err)
	}
	raw := selection.Span(day(2).Add(5*time.Hour), day(4).Add(13*time.Hour))
	out, err := s.Brush(ctx, id, domain.BrushInput{Extent: raw})
	if err != nil {
		t.Fatalf("Brush: %v", err)
	}
	want := selection.Span(day(2), day(5))
	if !out.Extent.Equal(want) || !out.FocusDomain.Equal(want) {
		t.Fatalf("extent = %v focus = %v, want %v", out.Extent, out.FocusDomain, want)
	}
	if len(out.Events) != 1 || out.Events[0].Type != domain.EventChanged {
		t.Fatalf("events = %+v", out.Events)
	}

	// moving to cover everything clears
	_, _ = s.BrushStart(ctx, id)
	out, _ = s.Brush(ctx, id, domain.BrushInput{Extent: selection.Span(day(1), day(11)), Mode: "resize"})
	if !out.Extent.IsEmpty() || len(out.Events) != 1 || out.Events[0].Type != domain.EventCleared {
		t.Fatalf("full range = %+v", out)
	}
}

func TestGranularity_ResnapsSelection(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "hour"}).ID
	ctx := context.Background()

	_, _ = s.BrushStart(ctx, id)
	out, err := s.Brush(ctx, id, domain.BrushInput{Extent: selection.Span(day(2).Add(5*time.Hour), day(4).Add(15*time.Hour))})
	if err != nil || len(out.Events) != 1 {
		t.Fatalf("Brush = %+v, %v", out, err)
	}

	out, err = s.Granularity(ctx, id, domain.GranularityInput{Granularity: "day"})
	if err != nil {
		t.Fatalf("Granularity: %v", err)
	}
	if want := selection.Span(day(2), day(5)); !out.Extent.Equal(want) || out.Granularity != "day" {
		t.Fatalf("extent = %v (%s), want %v", out.Extent, out.Granularity, want)
	}
	if len(out.Events) != 1 || out.Events[0].Type != domain.EventChanged {
		t.Fatalf("events = %+v", out.Events)
	}

	// same granularity again is a no-op
	out, _ = s.Granularity(ctx, id, domain.GranularityInput{Granularity: "day"})
	if len(out.Events) != 0 {
		t.Fatalf("repeat events = %+v", out.Events)
	}

	st, _ := s.Get(ctx, id)
	if st.Buckets != 10 {
		t.Fatalf("buckets = %d, want 10", st.Buckets)
	}
}

func TestGranularity_RejectsOverMaxBuckets(t *testing.T) {
	t.Parallel()

	s := New(repo.NewAnalytics(tenDays(), repo.DuckDB), Options{MaxBuckets: 20})
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID
	ctx := context.Background()

	_, err := s.Granularity(ctx, id, domain.GranularityInput{Granularity: "hour"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("hour over 10 days with max 20 err = %v, want invalid_argument", err)
	}

	st, _ := s.Get(ctx, id)
	if st.Granularity != "day" || st.Buckets != 10 {
		t.Fatalf("session after rejection = %s/%d, want day/10", st.Granularity, st.Buckets)
	}
}

func TestFilter_IsSilent(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	out, err := s.Filter(context.Background(), id, domain.FilterInput{Extent: selection.Span(day(3), day(6))})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if !out.Extent.Equal(selection.Span(day(3), day(6))) || len(out.Events) != 0 {
		t.Fatalf("Filter = %+v", out)
	}
	out, _ = s.Filter(context.Background(), id, domain.FilterInput{})
	if !out.Extent.IsEmpty() || len(out.Events) != 0 {
		t.Fatalf("clear filter = %+v", out)
	}
}

func TestHover_MirrorsToOtherView(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "day", Width: 1000}).ID
	ctx := context.Background()
	if _, err := s.Series(ctx, id, domain.SeriesInput{}); err != nil {
		t.Fatalf("Series: %v", err)
	}

	// 250px of 1000 over ten days lands in the third bucket
	out, err := s.Hover(ctx, id, domain.HoverInput{View: "context", X: 250})
	if err != nil {
		t.Fatalf("Hover: %v", err)
	}
	if out.Index != 2 || !out.Message.Start.Equal(day(3)) || !out.Message.End.Equal(day(4)) {
		t.Fatalf("hover = %+v", out)
	}
	if len(out.Points) != 1 || out.Points[0].Point.Value != 5 {
		t.Fatalf("points = %+v", out.Points)
	}

	// the focus view received what context published
	back, _ := s.Hover(ctx, id, domain.HoverInput{View: "focus", X: 0})
	if !back.Highlight.Start.Equal(day(3)) {
		t.Fatalf("focus view did not receive context hover: %+v", back.Highlight)
	}

	off, err := s.HoverOff(ctx, id, domain.HoverOffInput{View: "focus"})
	if err != nil || off.Index != -1 {
		t.Fatalf("HoverOff = %+v, %v", off, err)
	}
	again, _ := s.Hover(ctx, id, domain.HoverInput{View: "context", X: 0})
	if !again.Highlight.IsOff() {
		t.Fatalf("context highlight after hover off = %+v", again.Highlight)
	}
}

type memSaved struct {
	mu   sync.Mutex
	rows []domain.Saved
}

func (m *memSaved) Insert(_ context.Context, s domain.Saved) (domain.Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", len(m.rows)+1)
	m.rows = append(m.rows, s)
	return s, nil
}

func (m *memSaved) List(_ context.Context, dataset string, _ int) ([]domain.Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Saved
	for _, r := range m.rows {
		if r.Dataset == dataset {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSaved) Get(_ context.Context, id string) (domain.Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Saved{}, perr.NotFoundf("saved selection %s not found", id)
}

func (m *memSaved) Delete(_ context.Context, dataset, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id && r.Dataset == dataset {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return perr.NotFoundf("saved selection %s not found", id)
}

func TestSaved_Disabled(t *testing.T) {
	t.Parallel()

	s := newSvc(t, tenDays())
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID
	if _, err := s.Save(context.Background(), id, domain.SaveInput{Name: "x"}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("Save err = %v", err)
	}
	if _, err := s.ListSaved(context.Background(), id); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("ListSaved err = %v", err)
	}
}

func TestSaved_SaveListApply(t *testing.T) {
	t.Parallel()

	mem := &memSaved{}
	s := newSvc(t, tenDays(), WithSaved(mem))
	ctx := context.Background()
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	if _, err := s.Save(ctx, id, domain.SaveInput{Name: "nothing"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("save without selection err = %v", err)
	}

	_, _ = s.Filter(ctx, id, domain.FilterInput{Extent: selection.Span(day(4), day(7))})
	saved, err := s.Save(ctx, id, domain.SaveInput{Name: "midweek"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Dataset != "events.ts" || saved.Granularity != "day" {
		t.Fatalf("saved = %+v", saved)
	}

	list, err := s.ListSaved(ctx, id)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSaved = %+v, %v", list, err)
	}

	_, _ = s.Filter(ctx, id, domain.FilterInput{})
	out, err := s.ApplySaved(ctx, id, saved.ID)
	if err != nil {
		t.Fatalf("ApplySaved: %v", err)
	}
	if !out.Extent.Equal(selection.Span(day(4), day(7))) || len(out.Events) != 0 {
		t.Fatalf("ApplySaved = %+v", out)
	}

	other := create(t, s, domain.CreateInput{Dataset: domain.Dataset{Table: "orders", DateField: "ts"}, Granularity: "day"}).ID
	if _, err := s.ApplySaved(ctx, other, saved.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("cross dataset apply err = %v", err)
	}

	if err := s.DeleteSaved(ctx, other, saved.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("cross dataset delete err = %v", err)
	}
	if err := s.DeleteSaved(ctx, id, saved.ID); err != nil {
		t.Fatalf("DeleteSaved: %v", err)
	}
	if list, _ := s.ListSaved(ctx, id); len(list) != 0 {
		t.Fatalf("list after delete = %+v", list)
	}
}

func TestSessions_ExpireAndDelete(t *testing.T) {
	t.Parallel()

	var now atomic.Int64
	now.Store(day(1).UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()).UTC() }

	s := New(repo.NewAnalytics(tenDays(), repo.DuckDB), Options{TTL: time.Minute}, WithClock(clock))
	id := create(t, s, domain.CreateInput{Granularity: "day"}).ID

	now.Add(int64(30 * time.Second))
	if _, err := s.Get(context.Background(), id); err != nil {
		t.Fatalf("Get before ttl: %v", err)
	}
	now.Add(int64(2 * time.Minute))
	if _, err := s.Get(context.Background(), id); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Get after ttl err = %v", err)
	}

	id = create(t, s, domain.CreateInput{Granularity: "day"}).ID
	if err := s.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), id); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
}

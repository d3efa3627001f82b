package dualview

import (
	"testing"
	"time"

	"brushline/internal/core/bucket"
	"brushline/internal/core/selection"
	"brushline/internal/core/series"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func fixture(t *testing.T) (*selection.State, *Sync) {
	t.Helper()
	b := bucket.MustNew(bucket.Day)
	b.SetStartDate(day(1))
	b.SetEndDate(day(6))

	rows := []series.Row{
		{Date: day(1), Value: 40},
		{Date: day(2), Value: 5},
		{Date: day(3), Value: 8},
		{Date: day(5), Value: -3},
	}
	res, err := series.Aggregate(rows, b, series.Options{Kind: series.Sum})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	st := selection.New(b, nil)
	v := New(st, 500)
	v.SetSeries(res.Series)
	return st, v
}

func TestFocusFollowsSelection(t *testing.T) {
	t.Parallel()

	st, v := fixture(t)
	if got, want := v.FocusDomain(), selection.Span(day(1), day(6)); !got.Equal(want) {
		t.Fatalf("focus = %v, want context %v", got, want)
	}
	if got := v.FocusYDomain(); got != (YDomain{Lo: -3, Hi: 40}) {
		t.Fatalf("focus y = %+v", got)
	}

	st.ApplyExternal(selection.Span(day(2), day(4)))
	if got, want := v.FocusDomain(), selection.Span(day(2), day(4)); !got.Equal(want) {
		t.Fatalf("focus = %v, want %v", got, want)
	}
	if got := v.FocusYDomain(); got != (YDomain{Lo: 0, Hi: 8}) {
		t.Fatalf("focus y = %+v, want lo forced to 0", got)
	}
	if got := v.ContextYDomain(); got != (YDomain{Lo: -3, Hi: 40}) {
		t.Fatalf("context y moved with selection: %+v", got)
	}
}

func TestFocusYDomain_EmptySubset(t *testing.T) {
	t.Parallel()

	st, v := fixture(t)
	st.ApplyExternal(selection.Span(day(4), day(5)))
	if got := v.FocusYDomain(); got != (YDomain{}) {
		t.Fatalf("focus y = %+v, want [0,0]", got)
	}
}

func TestScalesShareBucketDates(t *testing.T) {
	t.Parallel()

	st, v := fixture(t)
	st.ApplyExternal(selection.Span(day(2), day(4)))

	if got := v.ContextScale().Map(day(1)); got != 0 {
		t.Fatalf("context x(day1) = %v", got)
	}
	if got := v.FocusScale().Map(day(3)); got != 250 {
		t.Fatalf("focus x(day3) = %v, want 250", got)
	}
}

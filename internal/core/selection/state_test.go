package selection

import (
	"encoding/json"
	"testing"
	"time"

	"brushline/internal/core/bucket"
)

type recorder struct {
	changed []Extent
	cleared int
}

func (r *recorder) OnSelectionChanged(e Extent) { r.changed = append(r.changed, e) }
func (r *recorder) OnSelectionCleared()         { r.cleared++ }

func at(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }

func newState(t *testing.T) (*State, *recorder) {
	t.Helper()
	b := bucket.MustNew(bucket.Day)
	b.SetStartDate(at(1, 0))
	b.SetEndDate(at(11, 0))
	rec := &recorder{}
	return New(b, rec), rec
}

func TestBrushEnd_ZeroWidthClears(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(3, 0), at(3, 0))})
	if !got.IsEmpty() {
		t.Fatalf("extent = %+v, want empty", got)
	}
	if rec.cleared != 1 || len(rec.changed) != 0 {
		t.Fatalf("notifications cleared=%d changed=%d, want 1/0", rec.cleared, len(rec.changed))
	}
}

func TestBrushEnd_ResizeRoundsEdges(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 5), at(4, 13)), Mode: Resize})
	if want := Span(at(2, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
	if len(rec.changed) != 1 || !rec.changed[0].Equal(got) {
		t.Fatalf("changed = %v", rec.changed)
	}
}

func TestBrushEnd_ResizeCollapseFallsBackToFloorCeil(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.BrushStart()
	// both edges round to 01-03
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 13), at(3, 6)), Mode: Resize})
	if want := Span(at(2, 0), at(4, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_MovePreservesWidth(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(5, 0)))
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(3, 10), at(6, 10)), Mode: Move})
	if want := Span(at(3, 0), at(6, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_MoveKeepsAtLeastOneBucket(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(3, 1), at(3, 2)), Mode: Move})
	if want := Span(at(3, 0), at(4, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_FullRangeClears(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(1, 2), at(10, 23)), Mode: Resize})
	if !got.IsEmpty() {
		t.Fatalf("extent = %v, want empty", got)
	}
	if rec.cleared != 1 || len(rec.changed) != 0 {
		t.Fatalf("cleared=%d changed=%d", rec.cleared, len(rec.changed))
	}
}

func TestBrushEnd_ClampsOutsideReference(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(5, 0), at(20, 0)), Mode: Resize})
	if want := Span(at(5, 0), at(11, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_ClickSelectsHoveredBucket(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(6, 0)))
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 0), at(6, 0)), Hovered: at(4, 0)})
	if want := Span(at(4, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
	if len(rec.changed) != 1 {
		t.Fatalf("changed = %d, want 1", len(rec.changed))
	}
}

func TestBrushEnd_SmallDragIgnoresHover(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(6, 0)))
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 1), at(6, 0)), Hovered: at(4, 0), Mode: Resize})
	if want := Span(at(2, 0), at(6, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_ClickNeedsFreshBrushStart(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(5, 0)))
	s.BrushStart()
	s.BrushEnd(BrushEvent{Raw: Span(at(8, 0), at(12, 0)), Mode: Resize})
	s.ApplyExternal(Span(at(3, 0), at(10, 0)))

	// no BrushStart since the last drag, so this is a plain resize
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 0), at(5, 0)), Hovered: at(3, 0), Mode: Resize})
	if want := Span(at(2, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_ExternalFilterEndsDrag(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(5, 0)))
	s.BrushStart()
	s.ApplyExternal(Span(at(2, 0), at(5, 0)))

	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 0), at(5, 0)), Hovered: at(3, 0)})
	if want := Span(at(2, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestBrushEnd_ClickOutsideBrushIsNotABucketClick(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(5, 0)))
	s.BrushStart()
	got := s.BrushEnd(BrushEvent{Raw: Span(at(2, 0), at(5, 0)), Hovered: at(8, 0)})
	if want := Span(at(2, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
}

func TestSnapIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newState(t)
	raws := []Extent{
		Span(at(2, 7), at(4, 19)),
		Span(at(3, 0), at(9, 0)),
		Span(at(5, 11), at(5, 14)),
	}
	for _, raw := range raws {
		once := s.snapEdges(raw)
		if twice := s.snapEdges(once); !twice.Equal(once) {
			t.Fatalf("snap(snap(%v)) = %v, want %v", raw, twice, once)
		}
	}
}

func TestSetGranularity_AlignedExtentIsSilent(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.ApplyExternal(Span(at(1, 0), at(3, 0)))

	h, err := bucket.Rebase(s.Bucketizer(), bucket.Hour)
	if err != nil {
		t.Fatalf("Rebase: %v", err)
	}
	got := s.SetGranularity(h)
	if want := Span(at(1, 0), at(3, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
	if len(rec.changed) != 0 || rec.cleared != 0 {
		t.Fatalf("unexpected notifications changed=%d cleared=%d", len(rec.changed), rec.cleared)
	}
}

func TestSetGranularity_ResnapsAndNotifies(t *testing.T) {
	t.Parallel()

	b := bucket.MustNew(bucket.Hour)
	b.SetStartDate(at(1, 0))
	b.SetEndDate(at(11, 0))
	rec := &recorder{}
	s := New(b, rec)
	s.ApplyExternal(Span(at(2, 5), at(4, 15)))

	d, _ := bucket.Rebase(b, bucket.Day)
	got := s.SetGranularity(d)
	if want := Span(at(2, 0), at(5, 0)); !got.Equal(want) {
		t.Fatalf("extent = %v, want %v", got, want)
	}
	if len(rec.changed) != 1 {
		t.Fatalf("changed = %d, want 1", len(rec.changed))
	}
}

func TestApplyExternal_DoesNotPublish(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	var seen []Extent
	s.Subscribe(func(e Extent) { seen = append(seen, e) })

	s.ApplyExternal(Span(at(2, 0), at(4, 0)))
	s.ApplyExternal(Extent{})
	if len(rec.changed) != 0 || rec.cleared != 0 {
		t.Fatalf("external filter leaked to publisher")
	}
	if len(seen) != 2 || !seen[1].IsEmpty() {
		t.Fatalf("subscribers saw %v", seen)
	}
}

func TestClearAndReset(t *testing.T) {
	t.Parallel()

	s, rec := newState(t)
	s.ApplyExternal(Span(at(2, 0), at(4, 0)))
	s.Clear()
	if !s.Extent().IsEmpty() || rec.cleared != 1 {
		t.Fatalf("Clear: extent=%v cleared=%d", s.Extent(), rec.cleared)
	}

	s.ApplyExternal(Span(at(2, 0), at(4, 0)))
	s.Reset(bucket.MustNew(bucket.Month))
	if !s.Extent().IsEmpty() || rec.cleared != 1 {
		t.Fatalf("Reset must be silent")
	}
	if !s.Reference().IsEmpty() {
		t.Fatalf("Reference with unset bucketizer = %v", s.Reference())
	}
}

func TestExtent_JSON(t *testing.T) {
	t.Parallel()

	b, _ := json.Marshal(Extent{})
	if string(b) != "[]" {
		t.Fatalf("empty = %s", b)
	}
	b, _ = json.Marshal(Span(at(1, 0), at(2, 0)))
	if string(b) != `["2024-01-01T00:00:00Z","2024-01-02T00:00:00Z"]` {
		t.Fatalf("active = %s", b)
	}

	var e Extent
	if err := json.Unmarshal(b, &e); err != nil || !e.Equal(Span(at(1, 0), at(2, 0))) {
		t.Fatalf("unmarshal = %v, %v", e, err)
	}
	if err := json.Unmarshal([]byte(`["2024-01-01T00:00:00Z"]`), &e); err == nil {
		t.Fatalf("expected error for one element")
	}
}

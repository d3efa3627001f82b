// Package selection owns the brush extent and keeps it snapped to bucket boundaries
//
// One State is shared by every view of a chart. Outbound filter notifications go
// to a Publisher; views subscribe with Subscribe and redraw from Extent.
package selection

import (
	"time"

	"brushline/internal/core/bucket"
)

// Mode tells BrushEnd how the user manipulated the brush
type Mode uint8

const (
	// Resize moved one or both edges independently
	Resize Mode = iota
	// Move dragged the whole brush, preserving its width
	Move
)

// Publisher receives outbound filter changes
type Publisher interface {
	OnSelectionChanged(Extent)
	OnSelectionCleared()
}

// Nop discards notifications
type Nop struct{}

func (Nop) OnSelectionChanged(Extent) {}
func (Nop) OnSelectionCleared()       {}

// BrushEvent is the raw brush extent at the end of a drag
// Hovered is the bucket date under the pointer, zero when none
type BrushEvent struct {
	Raw     Extent
	Mode    Mode
	Hovered time.Time
}

// State holds the extent and the reference bucketizer it snaps to
type State struct {
	b      bucket.Bucketizer
	extent Extent
	old    Extent
	pub    Publisher
	subs   []func(Extent)
}

// New builds an empty State over b; a nil pub discards notifications
func New(b bucket.Bucketizer, pub Publisher) *State {
	if pub == nil {
		pub = Nop{}
	}
	return &State{b: b, pub: pub}
}

// Extent returns the current selection
func (s *State) Extent() Extent { return s.extent }

// Bucketizer returns the bucketizer edges snap to
func (s *State) Bucketizer() bucket.Bucketizer { return s.b }

// Subscribe registers fn to run after every extent change, including silent ones
func (s *State) Subscribe(fn func(Extent)) {
	s.subs = append(s.subs, fn)
}

// Reference returns the full [start, end) of the bucketizer, empty when unset
func (s *State) Reference() Extent {
	start, ok1 := s.b.StartDate()
	end, ok2 := s.b.EndDate()
	if !ok1 || !ok2 {
		return Extent{}
	}
	return Span(start, end)
}

// Reset swaps in a bucketizer for a new dataset and drops the extent silently
func (s *State) Reset(b bucket.Bucketizer) {
	s.b = b
	s.old = Extent{}
	s.set(Extent{})
}

// BrushStart records the extent at the start of a drag
func (s *State) BrushStart() { s.old = s.extent }

// BrushEnd snaps the raw brush extent and notifies the publisher
//
// A zero-width drag, or a snapped extent covering the whole reference range,
// clears the selection. A click inside an active brush that left it unchanged
// selects exactly the hovered bucket. Every call ends the drag begun by BrushStart.
func (s *State) BrushEnd(ev BrushEvent) Extent {
	old := s.old
	s.old = Extent{}

	raw := Span(ev.Raw.Start, ev.Raw.End)
	if ev.Raw.IsEmpty() {
		raw = Extent{}
	}

	var next Extent
	switch {
	case !ev.Hovered.IsZero() && !old.IsEmpty() && raw.Equal(old) && s.extent.Contains(ev.Hovered):
		d := s.b.RoundDownBucket(ev.Hovered)
		next = Span(d, s.b.Advance(d, 1))
	case raw.IsEmpty():
		return s.clear()
	case ev.Mode == Move:
		next = s.snapMove(raw)
	default:
		next = s.snapEdges(raw)
	}

	next = s.clamp(next)
	if next.IsEmpty() || next.Equal(s.Reference()) {
		return s.clear()
	}
	s.set(next)
	s.pub.OnSelectionChanged(next)
	return next
}

// SetGranularity re-snaps both edges to nb and notifies only when an edge moved
func (s *State) SetGranularity(nb bucket.Bucketizer) Extent {
	s.b = nb
	s.old = Extent{}
	if s.extent.IsEmpty() {
		return s.extent
	}

	next := s.clamp(s.snapEdges(s.extent))
	if next.Equal(s.extent) {
		return s.extent
	}
	if next.IsEmpty() || next.Equal(s.Reference()) {
		return s.clear()
	}
	s.set(next)
	s.pub.OnSelectionChanged(next)
	return next
}

// ApplyExternal reconciles a filter set elsewhere without notifying the publisher
func (s *State) ApplyExternal(e Extent) Extent {
	s.old = Extent{}
	if e.IsEmpty() {
		s.set(Extent{})
		return s.extent
	}
	next := s.clamp(s.snapEdges(e))
	if next.Equal(s.Reference()) {
		next = Extent{}
	}
	s.set(next)
	return next
}

// Clear empties the selection and tells the publisher
func (s *State) Clear() Extent { return s.clear() }

func (s *State) clear() Extent {
	s.set(Extent{})
	s.pub.OnSelectionCleared()
	return s.extent
}

func (s *State) set(e Extent) {
	if e.IsEmpty() {
		e = Extent{}
	}
	s.extent = e
	for _, fn := range s.subs {
		fn(e)
	}
}

// snapEdges rounds each edge to its nearest boundary, widening to
// floor(start)/ceil(end) when that would collapse the extent
func (s *State) snapEdges(raw Extent) Extent {
	start := bucket.RoundNearest(s.b, raw.Start)
	end := bucket.RoundNearest(s.b, raw.End)
	if !start.Before(end) {
		start = s.b.RoundDownBucket(raw.Start)
		end = s.b.RoundUpBucket(raw.End)
	}
	return Span(start, end)
}

// snapMove rounds the start and keeps the number of bucket boundaries the raw
// extent spanned, at least one
func (s *State) snapMove(raw Extent) Extent {
	start := bucket.RoundNearest(s.b, raw.Start)
	i0, _ := s.b.BucketIndex(s.b.RoundUpBucket(raw.Start))
	i1, _ := s.b.BucketIndex(s.b.RoundUpBucket(raw.End))
	width := i1 - i0
	if width < 1 {
		width = 1
	}
	return Span(start, s.b.Advance(start, width))
}

// clamp bounds e to the reference range when one is known
func (s *State) clamp(e Extent) Extent {
	ref := s.Reference()
	if ref.IsEmpty() || e.IsEmpty() {
		return e
	}
	if e.Start.Before(ref.Start) {
		e.Start = ref.Start
	}
	if e.End.After(ref.End) {
		e.End = ref.End
	}
	return e
}

// Package refrange establishes the reference range of a dataset with a
// min query followed by a max query
//
// Phases run Idle -> AwaitingMin -> AwaitingMax -> Ready (or Failed). A newer
// Load supersedes an older one; the superseded load never reaches its
// terminal callback.
package refrange

import (
	"context"
	"sync"
	"time"

	"brushline/internal/core/bucket"
	"brushline/internal/core/latest"
	perr "brushline/internal/platform/errors"
)

// Phase is the loader state
type Phase uint8

const (
	Idle Phase = iota
	AwaitingMin
	AwaitingMax
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingMin:
		return "awaiting_min"
	case AwaitingMax:
		return "awaiting_max"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrSuperseded is returned by a Load that a newer Load replaced
var ErrSuperseded = perr.Newf(perr.ErrorCodeConflict, "reference range load superseded")

// Range is the true min and max timestamp of a dataset
// Empty is set when the dataset has no rows
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Empty bool      `json:"empty"`
}

// Source answers the two single-row queries; ok is false when there are no rows
type Source interface {
	MinDate(ctx context.Context) (t time.Time, ok bool, err error)
	MaxDate(ctx context.Context) (t time.Time, ok bool, err error)
}

// Loader runs one reference range load at a time
type Loader struct {
	tr     latest.Tracker
	mu     sync.Mutex
	phase  Phase
	rng    Range
	err    error
	onDone func(Range, error)
}

// NewLoader builds a loader; onDone, if set, is the single terminal callback
// of every load that is not superseded
func NewLoader(onDone func(Range, error)) *Loader {
	return &Loader{onDone: onDone}
}

// Phase returns the current phase
func (l *Loader) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Range returns the last completed range and error
func (l *Loader) Range() (Range, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng, l.err
}

// Load queries min then max from src
func (l *Loader) Load(ctx context.Context, src Source) (Range, error) {
	tok := l.tr.Begin(ctx)
	if !l.step(tok, AwaitingMin) {
		return Range{}, ErrSuperseded
	}

	start, ok, err := src.MinDate(tok.Context())
	if err != nil {
		return l.finish(tok, Range{}, perr.Wrap(err, perr.ErrorCodeDB, "min date query"))
	}
	if !ok {
		return l.finish(tok, Range{Empty: true}, nil)
	}
	if !l.step(tok, AwaitingMax) {
		return Range{}, ErrSuperseded
	}

	end, ok, err := src.MaxDate(tok.Context())
	if err != nil {
		return l.finish(tok, Range{}, perr.Wrap(err, perr.ErrorCodeDB, "max date query"))
	}
	if !ok {
		end = start
	}
	return l.finish(tok, Range{Start: start.UTC(), End: end.UTC()}, nil)
}

// Reset supersedes any in-flight load and returns to Idle
func (l *Loader) Reset() {
	l.tr.Invalidate()
	l.mu.Lock()
	l.phase, l.rng, l.err = Idle, Range{}, nil
	l.mu.Unlock()
}

func (l *Loader) step(tok latest.Token, p Phase) bool {
	return latest.Apply(&l.tr, tok, &l.mu, func() { l.phase = p })
}

func (l *Loader) finish(tok latest.Token, r Range, err error) (Range, error) {
	applied := latest.Apply(&l.tr, tok, &l.mu, func() {
		l.rng, l.err = r, err
		if err != nil {
			l.phase = Failed
		} else {
			l.phase = Ready
		}
	})
	if !applied {
		return Range{}, ErrSuperseded
	}
	if l.onDone != nil {
		l.onDone(r, err)
	}
	return r, err
}

// Bucketizer builds the bucketizer for r at g; the end is the boundary after
// the bucket holding the max timestamp. An empty range yields an unset bucketizer
func Bucketizer(r Range, g bucket.Granularity) (bucket.Bucketizer, error) {
	if r.Empty {
		return bucket.New(g)
	}
	return bucket.ForRange(g, r.Start, r.End)
}

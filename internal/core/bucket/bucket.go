// Package bucket maps timestamps onto granularity-aligned, half-open buckets
//
// A Bucketizer owns an interval [start, end). Bucket i covers
// [DateForBucket(i), DateForBucket(i+1)). Hour and day buckets have a fixed
// length so index math is division; month and year buckets walk calendar fields.
// All dates are handled in UTC.
package bucket

import (
	"strings"
	"time"

	perr "brushline/internal/platform/errors"
)

// Granularity selects the bucket width
type Granularity uint8

const (
	// Hour buckets are one hour wide
	Hour Granularity = iota + 1
	// Day buckets are 24 hours wide
	Day
	// Month buckets span one calendar month
	Month
	// Year buckets span one calendar year
	Year
)

// String returns the wire name of g
func (g Granularity) String() string {
	switch g {
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return "unknown"
	}
}

// Valid reports whether g is one of the known granularities
func (g Granularity) Valid() bool { return g >= Hour && g <= Year }

// MarshalText implements encoding.TextMarshaler
func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, perr.InvalidArgf("unknown granularity %d", g)
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Granularity) UnmarshalText(b []byte) error {
	v, err := ParseGranularity(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseGranularity parses hour, day, month or year (case-insensitive)
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour":
		return Hour, nil
	case "day":
		return Day, nil
	case "month":
		return Month, nil
	case "year":
		return Year, nil
	}
	return 0, perr.InvalidArgf("unknown granularity %q", s)
}

// Granularities lists every granularity from finest to coarsest
var Granularities = []Granularity{Hour, Day, Month, Year}

// Bucketizer is date and index arithmetic for one granularity
//
// Operations that need a start date report ok=false (or return zero values)
// while the start date is unset instead of failing.
type Bucketizer interface {
	Granularity() Granularity

	// ZeroOutDate clears every field finer than the granularity
	ZeroOutDate(d time.Time) time.Time
	// Advance moves d forward by n granularity units (n may be negative)
	Advance(d time.Time, n int) time.Time

	// SetStartDate stores the zeroed-out form of d
	SetStartDate(d time.Time)
	StartDate() (time.Time, bool)
	SetEndDate(d time.Time)
	EndDate() (time.Time, bool)
	// Reset unsets both start and end
	Reset()

	// NumBuckets is the number of whole units in [start, end), rounded up
	NumBuckets() int
	// BucketIndex is the floor of the units elapsed between start and d
	BucketIndex(d time.Time) (int, bool)
	// DateForBucket is start advanced by i units
	DateForBucket(i int) (time.Time, bool)

	// RoundDownBucket snaps d to the nearest boundary <= d
	RoundDownBucket(d time.Time) time.Time
	// RoundUpBucket snaps d to the nearest boundary >= d
	RoundUpBucket(d time.Time) time.Time
}

// New returns a fresh Bucketizer for g with no start or end set
func New(g Granularity) (Bucketizer, error) {
	switch g {
	case Hour:
		return &fixed{g: Hour, unit: time.Hour}, nil
	case Day:
		return &fixed{g: Day, unit: 24 * time.Hour}, nil
	case Month:
		return &monthly{}, nil
	case Year:
		return &yearly{}, nil
	}
	return nil, perr.InvalidArgf("unknown granularity %d", g)
}

// MustNew is New for granularities known at compile time
func MustNew(g Granularity) Bucketizer {
	b, err := New(g)
	if err != nil {
		panic(err)
	}
	return b
}

// bounds is the [start, end) pair shared by every implementation
type bounds struct {
	start, end       time.Time
	hasStart, hasEnd bool
}

func (b *bounds) StartDate() (time.Time, bool) { return b.start, b.hasStart }
func (b *bounds) EndDate() (time.Time, bool)   { return b.end, b.hasEnd }
func (b *bounds) SetEndDate(d time.Time)       { b.end, b.hasEnd = d.UTC(), true }
func (b *bounds) Reset()                       { *b = bounds{} }

func (b *bounds) setStart(d time.Time) { b.start, b.hasStart = d, true }

// stepper is the calendar-specific half of a bucketizer
type stepper interface {
	ZeroOutDate(d time.Time) time.Time
	Advance(d time.Time, n int) time.Time
	// steps is floor((d - from) / unit) for an aligned from
	steps(from, d time.Time) int
}

// shared implementations on top of bounds + stepper

func numBuckets(b *bounds, s stepper) int {
	if !b.hasStart || !b.hasEnd || !b.end.After(b.start) {
		return 0
	}
	n := s.steps(b.start, b.end)
	if s.Advance(b.start, n).Before(b.end) {
		n++
	}
	return n
}

func bucketIndex(b *bounds, s stepper, d time.Time) (int, bool) {
	if !b.hasStart {
		return 0, false
	}
	return s.steps(b.start, d.UTC()), true
}

func dateForBucket(b *bounds, s stepper, i int) (time.Time, bool) {
	if !b.hasStart {
		return time.Time{}, false
	}
	return s.Advance(b.start, i), true
}

func roundDown(b *bounds, s stepper, d time.Time) time.Time {
	d = d.UTC()
	if !b.hasStart {
		return s.ZeroOutDate(d)
	}
	return s.Advance(b.start, s.steps(b.start, d))
}

func roundUp(b *bounds, s stepper, d time.Time) time.Time {
	d = d.UTC()
	down := roundDown(b, s, d)
	if down.Equal(d) {
		return down
	}
	return s.Advance(down, 1)
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

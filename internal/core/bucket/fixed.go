package bucket

import (
	"time"

	"github.com/jinzhu/now"
)

// fixed serves hour and day, whose unit length never varies in UTC
type fixed struct {
	bounds
	g    Granularity
	unit time.Duration
}

func (f *fixed) Granularity() Granularity { return f.g }

func (f *fixed) ZeroOutDate(d time.Time) time.Time {
	n := now.With(d.UTC())
	if f.g == Hour {
		return n.BeginningOfHour()
	}
	return n.BeginningOfDay()
}

func (f *fixed) Advance(d time.Time, n int) time.Time {
	return d.Add(time.Duration(n) * f.unit)
}

func (f *fixed) steps(from, d time.Time) int {
	return int(floorDiv(int64(d.Sub(from)), int64(f.unit)))
}

func (f *fixed) SetStartDate(d time.Time) { f.setStart(f.ZeroOutDate(d)) }
func (f *fixed) NumBuckets() int          { return numBuckets(&f.bounds, f) }

func (f *fixed) BucketIndex(d time.Time) (int, bool)   { return bucketIndex(&f.bounds, f, d) }
func (f *fixed) DateForBucket(i int) (time.Time, bool) { return dateForBucket(&f.bounds, f, i) }
func (f *fixed) RoundDownBucket(d time.Time) time.Time { return roundDown(&f.bounds, f, d) }
func (f *fixed) RoundUpBucket(d time.Time) time.Time   { return roundUp(&f.bounds, f, d) }

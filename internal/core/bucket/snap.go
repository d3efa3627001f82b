package bucket

import "time"

// DefaultMaxBuckets caps Auto when the caller passes no limit
const DefaultMaxBuckets = 500

// RoundNearest snaps d to whichever neighbouring boundary is closer, ties go up
func RoundNearest(b Bucketizer, d time.Time) time.Time {
	d = d.UTC()
	down := b.RoundDownBucket(d)
	if down.Equal(d) {
		return down
	}
	up := b.RoundUpBucket(d)
	if d.Sub(down) < up.Sub(d) {
		return down
	}
	return up
}

// ClampIndex bounds i to [0, NumBuckets-1]; it returns 0 when there are no buckets
func ClampIndex(b Bucketizer, i int) int {
	n := b.NumBuckets()
	switch {
	case n == 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}

// Dates returns the start date of every bucket in order
func Dates(b Bucketizer) []time.Time {
	n := b.NumBuckets()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		d, _ := b.DateForBucket(i)
		out = append(out, d)
	}
	return out
}

// BucketEnd is the exclusive end of bucket i: the next bucket start, or the
// bucketizer end date for the last bucket
func BucketEnd(b Bucketizer, i int) (time.Time, bool) {
	if i >= b.NumBuckets()-1 {
		if end, ok := b.EndDate(); ok {
			return end, true
		}
	}
	return b.DateForBucket(i + 1)
}

// Rebase returns a new bucketizer for g over the same reference bounds
func Rebase(b Bucketizer, g Granularity) (Bucketizer, error) {
	nb, err := New(g)
	if err != nil {
		return nil, err
	}
	if s, ok := b.StartDate(); ok {
		nb.SetStartDate(s)
	}
	if e, ok := b.EndDate(); ok {
		nb.SetEndDate(e)
	}
	return nb, nil
}

// ForRange builds a bucketizer for [start, end)
//
// The end is extended to the boundary after the bucket holding end so the
// maximum timestamp always lands in a bucket of its own.
func ForRange(g Granularity, start, end time.Time) (Bucketizer, error) {
	b, err := New(g)
	if err != nil {
		return nil, err
	}
	b.SetStartDate(start)
	idx, _ := b.BucketIndex(end)
	last, _ := b.DateForBucket(idx + 1)
	b.SetEndDate(last)
	return b, nil
}

// Auto picks the finest granularity whose bucket count over [start, end]
// stays within maxBuckets; Year is returned when nothing fits
func Auto(start, end time.Time, maxBuckets int) Granularity {
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}
	for _, g := range Granularities {
		b, _ := ForRange(g, start, end)
		if b.NumBuckets() <= maxBuckets {
			return g
		}
	}
	return Year
}

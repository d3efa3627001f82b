package bucket

import (
	"time"

	"github.com/jinzhu/now"
)

// monthly walks calendar months; a unit is 28 to 31 days
type monthly struct{ bounds }

func (m *monthly) Granularity() Granularity { return Month }

func (m *monthly) ZeroOutDate(d time.Time) time.Time { return now.With(d.UTC()).BeginningOfMonth() }

// Advance is safe from day overflow because aligned dates sit on day 1
func (m *monthly) Advance(d time.Time, n int) time.Time { return d.AddDate(0, n, 0) }

func (m *monthly) steps(from, d time.Time) int {
	fy, fm, _ := from.Date()
	dy, dm, _ := d.Date()
	return (dy-fy)*12 + int(dm) - int(fm)
}

func (m *monthly) SetStartDate(d time.Time) { m.setStart(m.ZeroOutDate(d)) }
func (m *monthly) NumBuckets() int          { return numBuckets(&m.bounds, m) }

func (m *monthly) BucketIndex(d time.Time) (int, bool)   { return bucketIndex(&m.bounds, m, d) }
func (m *monthly) DateForBucket(i int) (time.Time, bool) { return dateForBucket(&m.bounds, m, i) }
func (m *monthly) RoundDownBucket(d time.Time) time.Time { return roundDown(&m.bounds, m, d) }
func (m *monthly) RoundUpBucket(d time.Time) time.Time   { return roundUp(&m.bounds, m, d) }

// yearly walks calendar years; a unit is 365 or 366 days
type yearly struct{ bounds }

func (y *yearly) Granularity() Granularity { return Year }

func (y *yearly) ZeroOutDate(d time.Time) time.Time { return now.With(d.UTC()).BeginningOfYear() }

func (y *yearly) Advance(d time.Time, n int) time.Time { return d.AddDate(n, 0, 0) }

func (y *yearly) steps(from, d time.Time) int { return d.Year() - from.Year() }

func (y *yearly) SetStartDate(d time.Time) { y.setStart(y.ZeroOutDate(d)) }
func (y *yearly) NumBuckets() int          { return numBuckets(&y.bounds, y) }

func (y *yearly) BucketIndex(d time.Time) (int, bool)   { return bucketIndex(&y.bounds, y, d) }
func (y *yearly) DateForBucket(i int) (time.Time, bool) { return dateForBucket(&y.bounds, y, i) }
func (y *yearly) RoundDownBucket(d time.Time) time.Time { return roundDown(&y.bounds, y, d) }
func (y *yearly) RoundUpBucket(d time.Time) time.Time   { return roundUp(&y.bounds, y, d) }

// Package hover resolves pointer positions to buckets and relays hover
// messages between visualizations
package hover

import (
	"encoding/json"
	"sort"
	"time"

	"brushline/internal/core/bucket"
	"brushline/internal/core/series"
)

// Message is the hovered bucket [Start, End); the zero value means hover off
type Message struct {
	Start time.Time
	End   time.Time
}

// IsOff reports whether m is the empty hover-off message
func (m Message) IsOff() bool { return m.Start.IsZero() && m.End.IsZero() }

// MarshalJSON writes {} for hover off
func (m Message) MarshalJSON() ([]byte, error) {
	if m.IsOff() {
		return []byte("{}"), nil
	}
	return json.Marshal(struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}{m.Start, m.End})
}

// UnmarshalJSON accepts {} or {"start","end"}
func (m *Message) UnmarshalJSON(b []byte) error {
	var w struct {
		Start *time.Time `json:"start"`
		End   *time.Time `json:"end"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = Message{}
	if w.Start != nil && w.End != nil {
		m.Start, m.End = w.Start.UTC(), w.End.UTC()
	}
	return nil
}

// Point is one series' value at the hovered bucket
type Point struct {
	SeriesID string           `json:"series_id"`
	Label    string           `json:"label"`
	Point    series.DataPoint `json:"point"`
}

// Resolver finds buckets for dates; context and focus views share one so a
// given date always lands in the same bucket
type Resolver struct {
	b     bucket.Bucketizer
	dates []time.Time
}

// NewResolver snapshots the bucket start dates of b
func NewResolver(b bucket.Bucketizer) *Resolver {
	return &Resolver{b: b, dates: bucket.Dates(b)}
}

// Len is the number of buckets
func (r *Resolver) Len() int { return len(r.dates) }

// Index returns bisect_right(dates, d) - 1 clamped to [0, Len-1]
// ok is false only when there are no buckets
func (r *Resolver) Index(d time.Time) (int, bool) {
	n := len(r.dates)
	if n == 0 {
		return 0, false
	}
	i := sort.Search(n, func(i int) bool { return r.dates[i].After(d) }) - 1
	switch {
	case i < 0:
		i = 0
	case i >= n:
		i = n - 1
	}
	return i, true
}

// At inverts pixel x with invert and resolves the bucket under it
func (r *Resolver) At(x float64, invert func(float64) time.Time) (int, bool) {
	return r.Index(invert(x))
}

// Message builds the hover message for bucket i; the last bucket ends at the
// bucketizer end date
func (r *Resolver) Message(i int) Message {
	if i < 0 || i >= len(r.dates) {
		return Message{}
	}
	end, ok := bucket.BucketEnd(r.b, i)
	if !ok {
		return Message{}
	}
	return Message{Start: r.dates[i], End: end}
}

// Points returns each series' data point at bucket i
func (r *Resolver) Points(i int, list []series.Series) []Point {
	out := make([]Point, 0, len(list))
	for _, s := range list {
		if i < 0 || i >= len(s.Data) {
			continue
		}
		out = append(out, Point{SeriesID: s.ID, Label: s.Label, Point: s.Data[i]})
	}
	return out
}

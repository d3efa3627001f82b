package series

import (
	"fmt"
	"sort"

	"brushline/internal/core/bucket"
	"brushline/internal/core/labels"
	perr "brushline/internal/platform/errors"
)

const (
	// DefaultLimit is the number of named series kept before the Others tail
	DefaultLimit = 10
	// DefaultName labels the single series produced for ungrouped data
	DefaultName = "All"
	// OthersID is the id of the synthetic tail series
	OthersID = "__others__"
	// OthersColor is the neutral color used for the tail series
	OthersColor = "#9CA3AF"
)

// Palette is assigned to named series in rank order
var Palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Options controls Aggregate
type Options struct {
	Kind Kind
	// Limit caps the named series; <= 0 means DefaultLimit
	Limit int
	// Grouped splits rows by GroupKey; otherwise every row feeds one series
	Grouped bool
	// Name labels the ungrouped series; empty means DefaultName
	Name string
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func (o Options) name() string {
	if o.Name == "" {
		return DefaultName
	}
	return o.Name
}

// Result is the ordered series list plus an id index
type Result struct {
	Series []Series
	// Excluded is the number of series folded into (or, for avg, dropped as) the tail
	Excluded int

	index map[string]int
}

// Lookup returns the series with id
func (r *Result) Lookup(id string) (*Series, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return &r.Series[i], true
}

// Append adds s at the end, replacing any series that already has its id
func (r *Result) Append(s Series) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[s.ID]; ok {
		r.Series[i] = s
		return
	}
	r.index[s.ID] = len(r.Series)
	r.Series = append(r.Series, s)
}

// Empty builds the all-undefined result used when a query fails or returns nothing
func Empty(b bucket.Bucketizer, opts Options) *Result {
	r := &Result{}
	r.Append(newDense(b, opts.name(), opts.name(), opts.Kind))
	r.Series[0].Color = Palette[0]
	return r
}

// Aggregate builds dense per-series arrays from rows and applies the
// top-N plus Others cap
//
// Rows whose bucket index falls outside [0, NumBuckets) are ignored.
func Aggregate(rows []Row, b bucket.Bucketizer, opts Options) (*Result, error) {
	if !opts.Kind.Valid() {
		return nil, perr.InvalidArgf("unknown aggregation kind %d", opts.Kind)
	}

	n := b.NumBuckets()
	all := make([]*accum, 0, 8)
	byKey := make(map[string]*accum)
	ids := map[string]bool{OthersID: true}

	for _, row := range rows {
		key := opts.name()
		if opts.Grouped {
			key = labels.Key(row.GroupKey)
		}
		a, ok := byKey[key]
		if !ok {
			a = &accum{s: newDense(b, groupID(key, ids), key, opts.Kind), hits: make([]int, n)}
			byKey[key] = a
			all = append(all, a)
		}

		idx, ok := b.BucketIndex(row.Date)
		if !ok || idx < 0 || idx >= n {
			continue
		}
		a.add(idx, row.Value)
	}

	if len(all) == 0 {
		return Empty(b, opts), nil
	}

	list := make([]Series, len(all))
	for i, a := range all {
		a.s.restat()
		list[i] = a.s
	}
	return capped(list, opts), nil
}

// groupID returns key as a series id, suffixed until it is unused
// OthersID is reserved for the tail series
func groupID(key string, used map[string]bool) string {
	id := key
	for i := 2; used[id]; i++ {
		id = fmt.Sprintf("%s~%d", key, i)
	}
	used[id] = true
	return id
}

// accum collects one series; hits counts writes per bucket for running means
type accum struct {
	s    Series
	hits []int
}

func (a *accum) add(idx int, v float64) {
	p := &a.s.Data[idx]
	a.hits[idx]++
	switch {
	case !p.Valid:
		p.Value, p.Valid = v, true
	case a.s.Kind == Avg:
		p.Value += (v - p.Value) / float64(a.hits[idx])
	default:
		p.Value = a.s.Kind.combine(p.Value, v)
	}
}

func newDense(b bucket.Bucketizer, id, label string, k Kind) Series {
	n := b.NumBuckets()
	data := make([]DataPoint, n)
	for i := range data {
		data[i].Date, _ = b.DateForBucket(i)
	}
	return Series{ID: id, Label: label, Kind: k, Data: data}
}

// less orders series by the kind's ranking; series with no values rank last
func less(k Kind, a, b *Series) bool {
	if (a.defined == 0) != (b.defined == 0) {
		return b.defined == 0
	}
	switch k {
	case Min:
		return a.Min < b.Min
	case Max:
		return a.Max > b.Max
	default:
		return a.Total > b.Total
	}
}

func capped(list []Series, opts Options) *Result {
	sort.SliceStable(list, func(i, j int) bool { return less(opts.Kind, &list[i], &list[j]) })

	limit := opts.limit()
	keep, rest := list, []Series(nil)
	if len(list) > limit {
		keep, rest = list[:limit], list[limit:]
	}

	r := &Result{Excluded: len(rest), index: make(map[string]int, len(keep)+1)}
	for i := range keep {
		keep[i].Color = Palette[i%len(Palette)]
		r.Append(keep[i])
	}

	if len(rest) == 0 || opts.Kind == Avg {
		return r
	}
	if others := combineOthers(rest, opts.Kind); others.Total != 0 {
		r.Append(others)
	}
	return r
}

// combineOthers merges rest bucket by bucket with the parent kind
func combineOthers(rest []Series, k Kind) Series {
	n := len(rest[0].Data)
	o := Series{
		ID:     OthersID,
		Label:  fmt.Sprintf("%d Others", len(rest)),
		Color:  OthersColor,
		Kind:   k,
		Others: true,
		Data:   make([]DataPoint, n),
	}
	for i := 0; i < n; i++ {
		o.Data[i].Date = rest[0].Data[i].Date
		for _, s := range rest {
			p := s.Data[i]
			if !p.Valid {
				continue
			}
			if !o.Data[i].Valid {
				o.Data[i].Value, o.Data[i].Valid = p.Value, true
				continue
			}
			o.Data[i].Value = k.combine(o.Data[i].Value, p.Value)
		}
	}
	o.restat()
	return o
}

// Package series turns sparse grouped rows into dense, bucket-aligned series
// and caps the number of series with a synthetic "N Others" tail
package series

import (
	"encoding/json"
	"time"
)

// Row is one backend result, already aggregated at the bucket granularity
type Row struct {
	Date     time.Time
	Value    float64
	GroupKey string
}

// DataPoint is one bucket of a series; Valid=false means no data, distinct from 0
type DataPoint struct {
	Date    time.Time
	Value   float64
	Valid   bool
	Anomaly bool
}

type dataPointJSON struct {
	Date    time.Time `json:"date"`
	Value   *float64  `json:"value"`
	Anomaly bool      `json:"anomaly,omitempty"`
}

// MarshalJSON writes a null value for empty buckets
func (p DataPoint) MarshalJSON() ([]byte, error) {
	w := dataPointJSON{Date: p.Date, Anomaly: p.Anomaly}
	if p.Valid {
		v := p.Value
		w.Value = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (p *DataPoint) UnmarshalJSON(b []byte) error {
	var w dataPointJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = DataPoint{Date: w.Date, Anomaly: w.Anomaly}
	if w.Value != nil {
		p.Value, p.Valid = *w.Value, true
	}
	return nil
}

// Series is a dense array with one DataPoint per bucket
// Total, Min and Max only count Valid points
type Series struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Kind   Kind        `json:"aggregation"`
	Total  float64     `json:"total"`
	Min    float64     `json:"min"`
	Max    float64     `json:"max"`
	Others bool        `json:"others,omitempty"`
	Data   []DataPoint `json:"data"`

	defined int
}

// Defined is the number of buckets holding a value
func (s *Series) Defined() int { return s.defined }

// Values returns the per-bucket values with empty buckets as 0
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.Data))
	for i, p := range s.Data {
		if p.Valid {
			out[i] = p.Value
		}
	}
	return out
}

// observe folds a bucket value into the running stats
func (s *Series) observe(v float64) {
	if s.defined == 0 {
		s.Min, s.Max = v, v
	} else {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.defined++
	s.Total += v
}

// restat recomputes Total, Min and Max from Data
func (s *Series) restat() {
	s.Total, s.Min, s.Max, s.defined = 0, 0, 0, 0
	for _, p := range s.Data {
		if p.Valid {
			s.observe(p.Value)
		}
	}
}

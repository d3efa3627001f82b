// Package overlay computes analytical overlays for bucketized series:
// least-squares trendlines and anomaly markers
package overlay

import (
	"math"

	"brushline/internal/core/series"
)

// Formula selects the least-squares denominator
type Formula uint8

const (
	// Compat keeps the historical denominator n*Sxx - 2*Sx so existing
	// trendlines render unchanged
	Compat Formula = iota
	// Textbook uses the ordinary least-squares fit
	Textbook
)

func (f Formula) String() string {
	if f == Textbook {
		return "textbook"
	}
	return "compat"
}

// TrendSuffix is appended to a series id to name its trend overlay
const TrendSuffix = "__trend"

// LeastSquares fits y = slope*x + intercept over parallel xs and ys
// NaN or infinite results become 0
func LeastSquares(xs, ys []float64, f Formula) (slope, intercept float64) {
	n := float64(min(len(xs), len(ys)))
	var sx, sy, sxy, sxx float64
	for i := 0; i < int(n); i++ {
		sx += xs[i]
		sy += ys[i]
		sxy += xs[i] * ys[i]
		sxx += xs[i] * xs[i]
	}

	switch f {
	case Textbook:
		slope = (n*sxy - sx*sy) / (n*sxx - sx*sx)
		intercept = (sy - slope*sx) / n
	default:
		slope = (n*sxy - sx*sy) / (n*sxx - 2*sx)
		intercept = (sxy - slope*sxx) / sx
	}
	return finite(slope), finite(intercept)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Trend returns a line over every bucket of s fitted to its defined points
// x is the 1-based bucket position
func Trend(s *series.Series, f Formula) series.Series {
	xs := make([]float64, 0, len(s.Data))
	ys := make([]float64, 0, len(s.Data))
	for i, p := range s.Data {
		if p.Valid {
			xs = append(xs, float64(i+1))
			ys = append(ys, p.Value)
		}
	}
	slope, intercept := LeastSquares(xs, ys, f)

	line := make([]float64, len(s.Data))
	for i := range line {
		line[i] = slope*float64(i+1) + intercept
	}
	return FromValues(s, s.ID+TrendSuffix, s.Label+" trend", line)
}

// FromValues builds an overlay series aligned to base from a same-length vector
func FromValues(base *series.Series, id, label string, vals []float64) series.Series {
	out := series.Series{
		ID:    id,
		Label: label,
		Color: base.Color,
		Kind:  base.Kind,
		Data:  make([]series.DataPoint, len(base.Data)),
	}
	for i, p := range base.Data {
		out.Data[i].Date = p.Date
		if i < len(vals) && !math.IsNaN(vals[i]) {
			out.Data[i].Value, out.Data[i].Valid = vals[i], true
			out.Total += vals[i]
		}
	}
	return out
}

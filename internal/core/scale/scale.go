// Package scale maps between data domains and pixel ranges
package scale

import "time"

// Time is a linear scale from a time domain to a numeric range
type Time struct {
	D0, D1 time.Time
	R0, R1 float64
}

// NewTime builds a time scale over [d0, d1] -> [r0, r1]
func NewTime(d0, d1 time.Time, r0, r1 float64) Time {
	return Time{D0: d0.UTC(), D1: d1.UTC(), R0: r0, R1: r1}
}

// Map returns the range position of t
func (s Time) Map(t time.Time) float64 {
	span := s.D1.Sub(s.D0)
	if span == 0 {
		return s.R0
	}
	f := float64(t.Sub(s.D0)) / float64(span)
	return s.R0 + f*(s.R1-s.R0)
}

// Invert returns the time at range position x
func (s Time) Invert(x float64) time.Time {
	w := s.R1 - s.R0
	if w == 0 {
		return s.D0
	}
	f := (x - s.R0) / w
	return s.D0.Add(time.Duration(f * float64(s.D1.Sub(s.D0))))
}

// WithDomain returns a copy of s over a new domain
func (s Time) WithDomain(d0, d1 time.Time) Time {
	s.D0, s.D1 = d0.UTC(), d1.UTC()
	return s
}

// Linear is a numeric scale, used for the value axis
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// Map returns the range position of v
func (s Linear) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return s.R0
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Invert returns the domain value at range position x
func (s Linear) Invert(x float64) float64 {
	if s.R1 == s.R0 {
		return s.D0
	}
	return s.D0 + (x-s.R0)/(s.R1-s.R0)*(s.D1-s.D0)
}

// Package dualview keeps a context (overview) and a focus (detail) view in step
// with one shared selection
package dualview

import (
	"brushline/internal/core/scale"
	"brushline/internal/core/selection"
	"brushline/internal/core/series"
)

// YDomain is the value axis domain of a view
type YDomain struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Sync derives both views' domains from a selection.State
type Sync struct {
	state  *selection.State
	series []series.Series
	width  float64

	focus  selection.Extent
	focusY YDomain
}

// New subscribes a Sync to state; width is the pixel width both views map onto
func New(state *selection.State, width float64) *Sync {
	v := &Sync{state: state, width: width}
	state.Subscribe(func(selection.Extent) { v.recompute() })
	v.recompute()
	return v
}

// SetSeries swaps the rendered series and recomputes the focus y-domain
func (v *Sync) SetSeries(list []series.Series) {
	v.series = list
	v.recompute()
}

// SetWidth changes the pixel range of both views
func (v *Sync) SetWidth(w float64) { v.width = w }

// Refresh recomputes after the reference range changed underneath the state
func (v *Sync) Refresh() { v.recompute() }

// ContextDomain is the full reference range
func (v *Sync) ContextDomain() selection.Extent { return v.state.Reference() }

// FocusDomain is the selection, or the context domain when nothing is selected
func (v *Sync) FocusDomain() selection.Extent { return v.focus }

// FocusYDomain is computed from the points inside FocusDomain only
func (v *Sync) FocusYDomain() YDomain { return v.focusY }

// ContextYDomain covers every point of every series
func (v *Sync) ContextYDomain() YDomain { return yDomain(v.series, v.ContextDomain()) }

// ContextScale maps the context domain onto [0, width]
func (v *Sync) ContextScale() scale.Time {
	d := v.ContextDomain()
	return scale.NewTime(d.Start, d.End, 0, v.width)
}

// FocusScale maps the focus domain onto [0, width]
func (v *Sync) FocusScale() scale.Time {
	return scale.NewTime(v.focus.Start, v.focus.End, 0, v.width)
}

func (v *Sync) recompute() {
	v.focus = v.state.Extent()
	if v.focus.IsEmpty() {
		v.focus = v.ContextDomain()
	}
	v.focusY = yDomain(v.series, v.focus)
}

// yDomain spans the defined points dated inside dom, [0, 0] when there are none
// Lo is never above 0
func yDomain(list []series.Series, dom selection.Extent) YDomain {
	var (
		lo, hi float64
		seen   bool
	)
	for i := range list {
		for _, p := range list[i].Data {
			if !p.Valid || !dom.Contains(p.Date) {
				continue
			}
			if !seen {
				lo, hi, seen = p.Value, p.Value, true
				continue
			}
			lo, hi = min(lo, p.Value), max(hi, p.Value)
		}
	}
	if !seen {
		return YDomain{}
	}
	return YDomain{Lo: min(0, lo), Hi: hi}
}

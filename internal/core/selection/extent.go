package selection

import (
	"encoding/json"
	"time"

	perr "brushline/internal/platform/errors"
)

// Extent is either empty (zero value) or a half-open [Start, End) with Start < End
type Extent struct {
	Start time.Time
	End   time.Time
}

// Span builds an extent from two dates
func Span(start, end time.Time) Extent { return Extent{Start: start.UTC(), End: end.UTC()} }

// IsEmpty reports whether e selects nothing
func (e Extent) IsEmpty() bool { return !e.Start.Before(e.End) }

// Equal compares instants, ignoring location
func (e Extent) Equal(o Extent) bool {
	if e.IsEmpty() || o.IsEmpty() {
		return e.IsEmpty() == o.IsEmpty()
	}
	return e.Start.Equal(o.Start) && e.End.Equal(o.End)
}

// Contains reports whether d falls in [Start, End)
func (e Extent) Contains(d time.Time) bool {
	return !e.IsEmpty() && !d.Before(e.Start) && d.Before(e.End)
}

// MarshalJSON writes [] when empty and [start, end] otherwise
func (e Extent) MarshalJSON() ([]byte, error) {
	if e.IsEmpty() {
		return []byte("[]"), nil
	}
	return json.Marshal([2]time.Time{e.Start, e.End})
}

// UnmarshalJSON accepts [] or a two element array
func (e *Extent) UnmarshalJSON(b []byte) error {
	var ts []time.Time
	if err := json.Unmarshal(b, &ts); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "extent must be an array of timestamps")
	}
	switch len(ts) {
	case 0:
		*e = Extent{}
	case 2:
		*e = Span(ts[0], ts[1])
	default:
		return perr.Newf(perr.ErrorCodeJSON, "extent must have 0 or 2 elements, got %d", len(ts))
	}
	return nil
}

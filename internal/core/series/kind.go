package series

import (
	"strings"

	perr "brushline/internal/platform/errors"
)

// Kind is the aggregation applied by the backend and when combining Others
type Kind uint8

const (
	Count Kind = iota + 1
	Sum
	Avg
	Min
	Max
)

func (k Kind) String() string {
	switch k {
	case Count:
		return "count"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool { return k >= Count && k <= Max }

// ParseKind parses count, sum, avg, min or max (case-insensitive)
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count":
		return Count, nil
	case "sum":
		return Sum, nil
	case "avg", "average":
		return Avg, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	}
	return 0, perr.InvalidArgf("unknown aggregation kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, perr.InvalidArgf("unknown aggregation kind %d", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// combine folds v into acc for kinds that merge per bucket
func (k Kind) combine(acc, v float64) float64 {
	switch k {
	case Min:
		if v < acc {
			return v
		}
		return acc
	case Max:
		if v > acc {
			return v
		}
		return acc
	default:
		return acc + v
	}
}

package overlay

import (
	"strings"
	"time"

	"brushline/internal/core/series"
)

// Anomaly is one externally detected marker; Date is kept as received
type Anomaly struct {
	Date      string `json:"date"`
	IsAnomaly bool   `json:"anomaly"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339, naive date-times and plain dates, all as UTC
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Merge marks s.Data by a two-pointer scan over anomalies sorted by date
//
// Both inputs must be ascending. Unparseable dates are skipped. Each anomaly
// matches at most one bucket. It returns the number of matches.
func Merge(s *series.Series, anomalies []Anomaly) int {
	matched := 0
	i, j := 0, 0
	var ad time.Time
	parsed := -1
	for i < len(s.Data) && j < len(anomalies) {
		if parsed != j {
			d, ok := ParseDate(anomalies[j].Date)
			if !ok {
				j++
				continue
			}
			ad, parsed = d, j
		}
		bd := s.Data[i].Date
		switch {
		case bd.Before(ad):
			i++
		case ad.Before(bd):
			j++
		default:
			s.Data[i].Anomaly = anomalies[j].IsAnomaly
			matched++
			i++
			j++
		}
	}
	return matched
}

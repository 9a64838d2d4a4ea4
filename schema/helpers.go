package schema

import (
	"fmt"
	"strings"
	"time"
)

// hltpSeparator splits a hierarchical taxonomy path into levels,
// e.g. "Military - Disinformation - Morale".
const hltpSeparator = " - "

// ParseGranularity converts a user-supplied string into a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidGranularities[g]; !ok {
		return "", fmt.Errorf("invalid granularity %q (must be day, week, month, quarter, year)", s)
	}
	return g, nil
}

// TopLevelCategory extracts the first level of a hierarchical taxonomy path.
// An empty path yields an empty string.
func TopLevelCategory(hltp string) string {
	if idx := strings.Index(hltp, hltpSeparator); idx >= 0 {
		return strings.TrimSpace(hltp[:idx])
	}
	return strings.TrimSpace(hltp)
}

// Truncate returns the start of the calendar bucket containing t.
// Buckets are computed in UTC; weeks start on Monday, matching the
// warehouse's DATE_TRUNC semantics.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch g {
	case DayGranularity:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case WeekGranularity:
		back := (int(t.Weekday()) + 6) % 7 // Monday = 0
		return time.Date(y, m, d-back, 0, 0, 0, 0, time.UTC)
	case QuarterGranularity:
		qm := time.Month((int(m-1)/3)*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	case YearGranularity:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	default: // MonthGranularity
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the bucket immediately following the bucket
// containing t. Month arithmetic is calendar-aware, not fixed-duration.
func (g Granularity) Next(t time.Time) time.Time {
	t = g.Truncate(t)
	switch g {
	case DayGranularity:
		return t.AddDate(0, 0, 1)
	case WeekGranularity:
		return t.AddDate(0, 0, 7)
	case QuarterGranularity:
		return t.AddDate(0, 3, 0)
	case YearGranularity:
		return t.AddDate(1, 0, 0)
	default: // MonthGranularity
		return t.AddDate(0, 1, 0)
	}
}

// FormatPeriod renders a bucket start for display at the given granularity.
func (g Granularity) FormatPeriod(t time.Time) string {
	t = t.UTC()
	switch g {
	case DayGranularity, WeekGranularity:
		return t.Format("2006-01-02")
	case QuarterGranularity:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case YearGranularity:
		return t.Format("2006")
	default: // MonthGranularity
		return t.Format("2006-01")
	}
}

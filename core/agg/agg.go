// Package agg has aggregation logic for corpus timeline data.
package agg

import (
	"sort"
	"time"

	"github.com/burstline/burstline/schema"
)

// bucketKey identifies one (category, period) cell during aggregation.
type bucketKey struct {
	category string
	period   time.Time
}

// Aggregate rolls raw observations up into a per-category time series at the
// given granularity. Observations with a zero timestamp or an empty category
// are dropped rather than failing the whole run, since upstream corpora carry
// partially classified rows. A zero weight counts as one occurrence.
//
// The output is sorted by period ascending, then category ascending, so
// downstream consumers and tests see a deterministic order. An input with no
// usable observations yields an empty slice, not nil semantics errors.
func Aggregate(observations []schema.Observation, g schema.Granularity) []schema.SeriesPoint {
	counts := make(map[bucketKey]int)

	for _, obs := range observations {
		if obs.Timestamp.IsZero() || obs.Category == "" {
			continue
		}
		weight := obs.Weight
		if weight == 0 {
			weight = 1
		}
		key := bucketKey{category: obs.Category, period: g.Truncate(obs.Timestamp)}
		counts[key] += weight
	}

	series := make([]schema.SeriesPoint, 0, len(counts))
	for key, count := range counts {
		series = append(series, schema.SeriesPoint{
			Period:   key.period,
			Category: key.category,
			Count:    count,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		if !series[i].Period.Equal(series[j].Period) {
			return series[i].Period.Before(series[j].Period)
		}
		return series[i].Category < series[j].Category
	})

	return series
}

// Categories returns the distinct categories present in a series, sorted.
func Categories(series []schema.SeriesPoint) []string {
	seen := make(map[string]bool)
	for _, pt := range series {
		seen[pt.Category] = true
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// SplitByCategory partitions a series into per-category slices, preserving
// the period order within each category.
func SplitByCategory(series []schema.SeriesPoint) map[string][]schema.SeriesPoint {
	byCategory := make(map[string][]schema.SeriesPoint)
	for _, pt := range series {
		byCategory[pt.Category] = append(byCategory[pt.Category], pt)
	}
	return byCategory
}

// TotalsByCategory sums counts per category over an entire series.
func TotalsByCategory(series []schema.SeriesPoint) map[string]int {
	totals := make(map[string]int)
	for _, pt := range series {
		totals[pt.Category] += pt.Count
	}
	return totals
}

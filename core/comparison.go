package core

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/burstline/burstline/core/agg"
	"github.com/burstline/burstline/schema"
)

// compareSlices computes the per-category deltas between two aggregated
// corpus slices, ranked by absolute delta descending.
func compareSlices(seriesA, seriesB []schema.SeriesPoint, limit int) schema.ComparisonResult {
	totalsA := agg.TotalsByCategory(seriesA)
	totalsB := agg.TotalsByCategory(seriesB)

	allCategories := make(map[string]struct{}, len(totalsA)+len(totalsB))
	totalA, totalB := 0, 0
	for category, count := range totalsA {
		allCategories[category] = struct{}{}
		totalA += count
	}
	for category, count := range totalsB {
		allCategories[category] = struct{}{}
		totalB += count
	}

	deltas := make([]schema.CategoryDelta, 0, len(allCategories))
	for category := range allCategories {
		countA := totalsA[category]
		countB := totalsB[category]
		deltas = append(deltas, schema.CategoryDelta{
			Category: category,
			CountA:   countA,
			CountB:   countB,
			Delta:    countB - countA,
			ShareA:   share(countA, totalA),
			ShareB:   share(countB, totalB),
		})
	}

	sortCategoryDeltas(deltas)
	if limit > 0 && len(deltas) > limit {
		deltas = deltas[:limit]
	}

	return schema.ComparisonResult{
		Categories: deltas,
		TotalA:     totalA,
		TotalB:     totalB,
		Summary:    comparisonText(totalA, totalB),
	}
}

// share returns count as a percentage of total, or 0 for an empty slice.
func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// sortCategoryDeltas orders deltas by absolute delta descending, then delta
// sign (positive first), then category ascending.
func sortCategoryDeltas(deltas []schema.CategoryDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		a := deltas[i]
		b := deltas[j]

		absA := abs(a.Delta)
		absB := abs(b.Delta)
		if absA != absB {
			return absA > absB
		}
		if a.Delta != b.Delta {
			return a.Delta > b.Delta
		}
		return a.Category < b.Category
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// comparisonText produces the one-line relative size summary for the two
// slices.
func comparisonText(totalA, totalB int) string {
	switch {
	case totalA == 0 && totalB == 0:
		return "Both selections contain no data."
	case totalA == 0:
		return fmt.Sprintf("Selection 1 is empty, Selection 2 contains %s items.", formatCount(totalB))
	case totalB == 0:
		return fmt.Sprintf("Selection 2 is empty, Selection 1 contains %s items.", formatCount(totalA))
	}

	ratio := float64(totalA) / float64(totalB)
	if ratio > 1 {
		return fmt.Sprintf("Selection 1 is %.1fx larger than Selection 2 (%s vs %s items).",
			ratio, formatCount(totalA), formatCount(totalB))
	}
	return fmt.Sprintf("Selection 2 is %.1fx larger than Selection 1 (%s vs %s items).",
		1/ratio, formatCount(totalB), formatCount(totalA))
}

// formatCount renders an integer with thousands separators.
func formatCount(v int) string {
	s := strconv.Itoa(v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

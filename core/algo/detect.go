// Package algo has the burst detection, ranking and summarization logic.
package algo

import (
	"fmt"
	"sort"

	"github.com/burstline/burstline/core/agg"
	"github.com/burstline/burstline/schema"
)

// Output bundles what a single detection pass produced.
type Output struct {
	// Points holds every flagged bucket, sorted by category then period.
	Points []schema.BurstPoint

	// Skipped lists categories with too few buckets to analyze, so the
	// caller can surface them instead of silently dropping data.
	Skipped []string
}

// Detect flags buckets whose count significantly exceeds a centered rolling
// baseline. It processes each category independently and deterministically:
// the same series and params always yield the same flags.
//
// A negative count anywhere aborts the whole run with an error, since it
// indicates corrupt upstream aggregation rather than a sparse category.
// Categories with fewer than three buckets after gap filling are skipped
// and reported in Output.Skipped.
func Detect(series []schema.SeriesPoint, p schema.DetectionParams) (*Output, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, pt := range series {
		if pt.Count < 0 {
			return nil, fmt.Errorf("negative count %d for category %q at %s",
				pt.Count, pt.Category, p.Granularity.FormatPeriod(pt.Period))
		}
	}

	byCategory := agg.SplitByCategory(series)
	categories := agg.Categories(series)

	out := &Output{}
	for _, category := range categories {
		filled := zeroFill(byCategory[category], p.Granularity)
		if len(filled) < schema.MinWindow {
			out.Skipped = append(out.Skipped, category)
			continue
		}
		out.Points = append(out.Points, detectCategory(filled, p)...)
	}
	return out, nil
}

// zeroFill sorts one category's points by period and inserts explicit
// zero-count buckets for every gap between the first and last period.
// Without this the rolling baseline would never see quiet stretches and
// bursts after a silence would be missed.
func zeroFill(points []schema.SeriesPoint, g schema.Granularity) []schema.SeriesPoint {
	if len(points) == 0 {
		return nil
	}

	sorted := make([]schema.SeriesPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	category := sorted[0].Category
	filled := make([]schema.SeriesPoint, 0, len(sorted))
	filled = append(filled, sorted[0])
	for _, pt := range sorted[1:] {
		for next := g.Next(filled[len(filled)-1].Period); next.Before(pt.Period); next = g.Next(next) {
			filled = append(filled, schema.SeriesPoint{Period: next, Category: category, Count: 0})
		}
		filled = append(filled, pt)
	}
	return filled
}

// detectCategory runs the rolling-window test over one contiguous,
// period-sorted series and returns the flagged buckets.
func detectCategory(filled []schema.SeriesPoint, p schema.DetectionParams) []schema.BurstPoint {
	n := len(filled)
	window := p.Window
	if window == 0 {
		window = max(schema.MinWindow, n/10)
	}
	half := window / 2
	multiplier := p.ThresholdMultiplier()

	values := make([]float64, n)
	for i, pt := range filled {
		values[i] = float64(pt.Count)
	}

	var points []schema.BurstPoint
	prevFlagged := false
	for i, pt := range filled {
		// Centered window, shrinking at the series boundaries.
		lo := max(0, i-half)
		hi := min(n-1, i+half)
		baseline := mean(values[lo : hi+1])
		spread := stddev(values[lo : hi+1])

		flagged := values[i] > baseline+multiplier*spread
		if flagged {
			points = append(points, schema.BurstPoint{
				Category:     pt.Category,
				Period:       pt.Period,
				Count:        pt.Count,
				Baseline:     baseline,
				Intensity:    (values[i] - baseline) / (spread + 1),
				EpisodeStart: !prevFlagged,
			})
		}
		prevFlagged = flagged
	}
	return points
}

package algo

import (
	"sort"

	"github.com/burstline/burstline/schema"
)

// Rank orders burst points by intensity descending. Ties break on period
// ascending, then category ascending, so output order is fully determined.
func Rank(points []schema.BurstPoint) []schema.BurstPoint {
	ranked := make([]schema.BurstPoint, len(points))
	copy(ranked, points)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Intensity != ranked[j].Intensity {
			return ranked[i].Intensity > ranked[j].Intensity
		}
		if !ranked[i].Period.Equal(ranked[j].Period) {
			return ranked[i].Period.Before(ranked[j].Period)
		}
		return ranked[i].Category < ranked[j].Category
	})
	return ranked
}

// GroupEpisodes merges temporally contiguous burst points of the same
// category into episodes. Contiguity means the next point's period is
// exactly one bucket after the previous one; an isolated flagged bucket
// becomes an episode of duration 1. The input must be sorted by category
// then period, which is how Detect emits it.
func GroupEpisodes(points []schema.BurstPoint, g schema.Granularity) []schema.BurstEpisode {
	var episodes []schema.BurstEpisode
	var current *schema.BurstEpisode

	flush := func() {
		if current != nil {
			episodes = append(episodes, *current)
			current = nil
		}
	}

	for _, pt := range points {
		contiguous := current != nil &&
			current.Category == pt.Category &&
			g.Next(current.End).Equal(pt.Period)
		if !contiguous {
			flush()
			current = &schema.BurstEpisode{
				Category:  pt.Category,
				Start:     pt.Period,
				Intensity: pt.Intensity,
			}
		}
		current.End = pt.Period
		current.Duration++
		current.TotalExcess += float64(pt.Count) - pt.Baseline
		if pt.Count > current.PeakCount {
			current.PeakCount = pt.Count
		}
		// Episode intensity is the peak member intensity. Averaging
		// would let long quiet tails dilute a sharp spike.
		if pt.Intensity > current.Intensity {
			current.Intensity = pt.Intensity
		}
	}
	flush()
	return episodes
}

// RankEpisodes orders episodes by intensity descending, breaking ties on
// start period ascending, then category ascending.
func RankEpisodes(episodes []schema.BurstEpisode) []schema.BurstEpisode {
	ranked := make([]schema.BurstEpisode, len(episodes))
	copy(ranked, episodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Intensity != ranked[j].Intensity {
			return ranked[i].Intensity > ranked[j].Intensity
		}
		if !ranked[i].Start.Equal(ranked[j].Start) {
			return ranked[i].Start.Before(ranked[j].Start)
		}
		return ranked[i].Category < ranked[j].Category
	})
	return ranked
}

// Summarize computes aggregate statistics over a set of episodes.
// No episodes yields the zero-valued summary rather than NaN fields.
func Summarize(episodes []schema.BurstEpisode) schema.BurstSummary {
	if len(episodes) == 0 {
		return schema.BurstSummary{}
	}

	durations := make([]float64, len(episodes))
	intensities := make([]float64, len(episodes))
	totalTime := 0
	for i, ep := range episodes {
		durations[i] = float64(ep.Duration)
		intensities[i] = ep.Intensity
		totalTime += ep.Duration
	}

	maxIntensity := intensities[0]
	minIntensity := intensities[0]
	for _, v := range intensities[1:] {
		if v > maxIntensity {
			maxIntensity = v
		}
		if v < minIntensity {
			minIntensity = v
		}
	}

	return schema.BurstSummary{
		TotalBursts:      len(episodes),
		AverageDuration:  mean(durations),
		AverageIntensity: mean(intensities),
		TotalBurstTime:   totalTime,
		MaxIntensity:     maxIntensity,
		MinIntensity:     minIntensity,
		StdDuration:      stddev(durations),
		StdIntensity:     stddev(intensities),
	}
}

package algo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burstline/burstline/schema"
)

// monthlySeries builds a contiguous monthly series for one category
// starting at January 2024.
func monthlySeries(category string, counts []int) []schema.SeriesPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]schema.SeriesPoint, len(counts))
	for i, c := range counts {
		series[i] = schema.SeriesPoint{
			Period:   start.AddDate(0, i, 0),
			Category: category,
			Count:    c,
		}
	}
	return series
}

func monthlyParams(sensitivity float64, window int) schema.DetectionParams {
	return schema.DetectionParams{
		Granularity: schema.MonthGranularity,
		Sensitivity: sensitivity,
		Window:      window,
	}
}

// A single extreme spike inflates the std of its own centered window enough
// to stay under the threshold. This dampening is a property of the algorithm,
// not a bug, and must not be "fixed" by excluding the point from its window.
func TestDetectSpikeDampensItself(t *testing.T) {
	series := monthlySeries("Military", []int{10, 11, 9, 10, 52, 12, 10})

	out, err := Detect(series, monthlyParams(1.0, 3))
	require.NoError(t, err)

	// Window [10,52,12] around the spike: mean 24.67, std 19.34,
	// threshold 63.35. 52 does not exceed it.
	assert.Empty(t, out.Points)
	assert.Empty(t, out.Skipped)
}

// A flat series has zero std everywhere, so the threshold equals the mean
// and the strict comparison never fires, at any sensitivity.
func TestDetectFlatSeries(t *testing.T) {
	series := monthlySeries("Military", []int{10, 10, 10, 10, 10, 10, 10})

	for _, sensitivity := range []float64{0.1, 1.0, 5.0, 10.0} {
		out, err := Detect(series, monthlyParams(sensitivity, 3))
		require.NoError(t, err)
		assert.Empty(t, out.Points, "sensitivity %g", sensitivity)
	}
}

func TestDetectFlagsSustainedSpike(t *testing.T) {
	counts := make([]int, 0, 23)
	for i := 0; i < 10; i++ {
		counts = append(counts, 1)
	}
	counts = append(counts, 50, 50, 50)
	for i := 0; i < 10; i++ {
		counts = append(counts, 1)
	}
	series := monthlySeries("Economic", counts)

	out, err := Detect(series, monthlyParams(10.0, 7))
	require.NoError(t, err)
	require.Len(t, out.Points, 3)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, pt := range out.Points {
		assert.Equal(t, "Economic", pt.Category)
		assert.Equal(t, start.AddDate(0, 10+i, 0), pt.Period)
		assert.Equal(t, 50, pt.Count)
		// Every spike bucket sees the same window composition:
		// four 1s and three 50s, mean 22, std 24.25.
		assert.InDelta(t, 22.0, pt.Baseline, 0.01)
		assert.InDelta(t, 28.0/25.25, pt.Intensity, 0.001)
		assert.Equal(t, i == 0, pt.EpisodeStart)
	}
}

// Increasing sensitivity lowers the threshold, so the flagged set can only
// grow: flags(s1) must be a subset of flags(s2) whenever s1 < s2.
func TestDetectMonotonicSensitivity(t *testing.T) {
	series := monthlySeries("Political",
		[]int{5, 9, 2, 14, 3, 8, 21, 4, 6, 11, 2, 30, 7, 5, 9})

	flagged := func(sensitivity float64) map[time.Time]bool {
		out, err := Detect(series, monthlyParams(sensitivity, 3))
		require.NoError(t, err)
		set := make(map[time.Time]bool)
		for _, pt := range out.Points {
			set[pt.Period] = true
		}
		return set
	}

	sensitivities := []float64{0.5, 1.0, 2.0, 5.0, 10.0}
	prev := flagged(sensitivities[0])
	for _, s := range sensitivities[1:] {
		next := flagged(s)
		for period := range prev {
			assert.True(t, next[period],
				"period %s flagged at lower sensitivity but not at %g", period, s)
		}
		prev = next
	}
}

// A series with gaps omitted and the same series with explicit zero counts
// must yield identical flags. Zero-filling is idempotent.
func TestDetectGapRobustness(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sparse := []schema.SeriesPoint{
		{Period: start, Category: "Cyber", Count: 2},
		{Period: start.AddDate(0, 1, 0), Category: "Cyber", Count: 3},
		// Feb..Apr gap left implicit.
		{Period: start.AddDate(0, 5, 0), Category: "Cyber", Count: 25},
		{Period: start.AddDate(0, 6, 0), Category: "Cyber", Count: 2},
	}

	explicit := make([]schema.SeriesPoint, 0, 7)
	for _, pt := range sparse[:2] {
		explicit = append(explicit, pt)
	}
	for i := 2; i <= 4; i++ {
		explicit = append(explicit, schema.SeriesPoint{
			Period: start.AddDate(0, i, 0), Category: "Cyber", Count: 0,
		})
	}
	explicit = append(explicit, sparse[2], sparse[3])

	params := monthlyParams(5.0, 3)
	fromSparse, err := Detect(sparse, params)
	require.NoError(t, err)
	fromExplicit, err := Detect(explicit, params)
	require.NoError(t, err)

	assert.Equal(t, fromExplicit.Points, fromSparse.Points)
	assert.NotEmpty(t, fromSparse.Points)
}

func TestDetectSkipsShortCategories(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := monthlySeries("Military", []int{10, 11, 9, 10, 52, 12, 10})
	series = append(series,
		schema.SeriesPoint{Period: start, Category: "Tiny", Count: 4},
		schema.SeriesPoint{Period: start.AddDate(0, 1, 0), Category: "Tiny", Count: 5},
	)

	out, err := Detect(series, monthlyParams(1.0, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"Tiny"}, out.Skipped)
}

// A short category whose two observed buckets are far apart still has enough
// buckets once the gap is zero-filled.
func TestDetectZeroFillRescuesSparseCategory(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []schema.SeriesPoint{
		{Period: start, Category: "Sparse", Count: 1},
		{Period: start.AddDate(0, 5, 0), Category: "Sparse", Count: 20},
	}

	out, err := Detect(series, monthlyParams(1.0, 3))
	require.NoError(t, err)
	assert.Empty(t, out.Skipped)
}

func TestDetectRejectsNegativeCounts(t *testing.T) {
	series := monthlySeries("Military", []int{10, -1, 9, 10})

	out, err := Detect(series, monthlyParams(1.0, 3))
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestDetectRejectsInvalidParams(t *testing.T) {
	series := monthlySeries("Military", []int{10, 11, 9})

	_, err := Detect(series, monthlyParams(0, 3))
	assert.ErrorIs(t, err, schema.ErrSensitivityTooLow)

	_, err = Detect(series, monthlyParams(11, 3))
	assert.ErrorIs(t, err, schema.ErrSensitivityTooHigh)

	_, err = Detect(series, monthlyParams(1.0, 2))
	assert.ErrorIs(t, err, schema.ErrWindowTooSmall)
}

func TestDetectDeterministic(t *testing.T) {
	series := monthlySeries("A", []int{5, 9, 2, 14, 3, 8, 21, 4})
	series = append(series, monthlySeries("B", []int{1, 1, 1, 12, 1, 1, 1, 1})...)

	params := monthlyParams(8.0, 3)
	first, err := Detect(series, params)
	require.NoError(t, err)
	second, err := Detect(series, params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestZeroFill(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []schema.SeriesPoint{
		{Period: start.AddDate(0, 3, 0), Category: "X", Count: 7},
		{Period: start, Category: "X", Count: 2},
	}

	filled := zeroFill(points, schema.MonthGranularity)
	require.Len(t, filled, 4)
	assert.Equal(t, 2, filled[0].Count)
	assert.Equal(t, 0, filled[1].Count)
	assert.Equal(t, 0, filled[2].Count)
	assert.Equal(t, 7, filled[3].Count)
	for i, pt := range filled {
		assert.Equal(t, start.AddDate(0, i, 0), pt.Period)
		assert.Equal(t, "X", pt.Category)
	}

	assert.Nil(t, zeroFill(nil, schema.MonthGranularity))
}

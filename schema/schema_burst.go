package schema

import (
	"errors"
	"fmt"
	"time"
)

// Parameter validation errors returned by DetectionParams.Validate.
var (
	ErrSensitivityTooLow  = errors.New("sensitivity must be positive")
	ErrSensitivityTooHigh = fmt.Errorf("sensitivity too high (maximum %g)", MaxSensitivity)
	ErrWindowTooSmall     = fmt.Errorf("window must be at least %d buckets", MinWindow)
)

// DetectionParams are the per-invocation tuning knobs for burst detection.
// They are supplied by the caller and never persisted.
type DetectionParams struct {
	Granularity Granularity `json:"granularity"`
	Sensitivity float64     `json:"sensitivity"`

	// Window is the rolling-window size in buckets. Zero selects the
	// automatic default of max(3, buckets/10) per category.
	Window int `json:"window"`
}

// Validate rejects out-of-range parameters. Values are never clamped:
// silently adjusting an invalid sensitivity would make results
// non-reproducible across callers.
func (p DetectionParams) Validate() error {
	if _, ok := ValidGranularities[p.Granularity]; !ok {
		return fmt.Errorf("invalid granularity %q", p.Granularity)
	}
	if p.Sensitivity <= 0 {
		return ErrSensitivityTooLow
	}
	if p.Sensitivity > MaxSensitivity {
		return ErrSensitivityTooHigh
	}
	if p.Window != 0 && p.Window < MinWindow {
		return ErrWindowTooSmall
	}
	return nil
}

// ThresholdMultiplier converts sensitivity into the number of local standard
// deviations a count must exceed its baseline by. Higher sensitivity means a
// lower multiplier and therefore more flagged points.
func (p DetectionParams) ThresholdMultiplier() float64 {
	return 2.0 / p.Sensitivity
}

// BurstPoint is a single bucket whose observed count significantly exceeds
// its local baseline. Created by the detector, never mutated afterwards.
type BurstPoint struct {
	Category     string    `json:"category"`
	Period       time.Time `json:"period"`
	Count        int       `json:"count"`
	Baseline     float64   `json:"baseline"`  // Centered rolling mean at this bucket
	Intensity    float64   `json:"intensity"` // (count - baseline) / (rolling std + 1)
	EpisodeStart bool      `json:"episode_start"`
}

// BurstEpisode is a maximal run of temporally contiguous burst points within
// one category. A single isolated flagged bucket is an episode of duration 1.
type BurstEpisode struct {
	Category    string    `json:"category"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Duration    int       `json:"duration"`     // Number of contiguous flagged buckets
	PeakCount   int       `json:"peak_count"`   // Highest observed count in the episode
	TotalExcess float64   `json:"total_excess"` // Sum of (count - baseline) over all buckets
	Intensity   float64   `json:"intensity"`    // Maximum member intensity, not the mean
}

// BurstSummary holds aggregate statistics over all detected episodes.
// An empty input yields the zero value, never NaN.
type BurstSummary struct {
	TotalBursts      int     `json:"total_bursts"`
	AverageDuration  float64 `json:"average_duration"`
	AverageIntensity float64 `json:"average_intensity"`
	TotalBurstTime   int     `json:"total_burst_time"`
	MaxIntensity     float64 `json:"max_intensity"`
	MinIntensity     float64 `json:"min_intensity"`
	StdDuration      float64 `json:"std_duration"`
	StdIntensity     float64 `json:"std_intensity"`
}

// DetectionResult bundles everything a single detection run produced.
type DetectionResult struct {
	Params     DetectionParams `json:"params"`
	Points     []BurstPoint    `json:"points"`
	Episodes   []BurstEpisode  `json:"episodes,omitempty"`
	Summary    BurstSummary    `json:"summary"`
	Categories int             `json:"categories"` // Categories with enough data to analyze
	Skipped    []string        `json:"skipped,omitempty"`
}

// Package schema has configs, models and shared constants for all parts of burstline.
package schema

import "time"

// Observation is a single classified chunk occurrence: a timestamp paired with
// the taxonomy category it was classified under. Observations are produced by
// the storage layer and consumed by the timeline aggregator. The same
// (timestamp, category) pair may occur many times; the aggregator sums them.
type Observation struct {
	Timestamp time.Time // Publication time of the record the chunk belongs to
	Category  string    // Top-level taxonomy category label
	Weight    int       // Observation weight; zero is treated as one
}

// SeriesPoint is one bucket of an aggregated timeline: the number of
// observations for a category within a single calendar period. For a fixed
// category, periods are unique and evenly spaced at the chosen granularity.
// Gaps (periods with no observations) may be absent; the detector zero-fills
// them before computing rolling statistics.
type SeriesPoint struct {
	Period   time.Time `json:"period"`
	Category string    `json:"category"`
	Count    int       `json:"count"`
}

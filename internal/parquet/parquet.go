// Package parquet provides data structures and functions for exporting burst
// detection data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/burstline/burstline/schema"
	"github.com/parquet-go/parquet-go"
)

// DetectionRun represents a single burst detection run with metadata.
// This struct maps to the burstline_runs database table.
type DetectionRun struct {
	// RunID is the unique identifier for this detection run
	RunID int64 `parquet:"run_id,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	// Categories is the number of categories examined in this run
	Categories int32 `parquet:"categories,snappy"`

	// Bursts is the number of flagged buckets produced by this run
	Bursts int32 `parquet:"bursts,snappy"`

	// Params contains the JSON-encoded detection parameters
	Params string `parquet:"params,snappy"`
}

// BurstRow represents a single flagged bucket from a detection run.
type BurstRow struct {
	// Category is the top-level taxonomy category of the bucket
	Category string `parquet:"category,snappy"`

	// Period is the start of the time bucket (UTC)
	Period time.Time `parquet:"period,snappy"`

	// Count is the observed activity for the bucket
	Count int32 `parquet:"count,snappy"`

	// Baseline is the rolling mean of the surrounding window
	Baseline float64 `parquet:"baseline,snappy"`

	// Intensity measures how far the count sits above the baseline
	Intensity float64 `parquet:"intensity,snappy"`

	// EpisodeStart marks the first bucket of a contiguous burst run
	EpisodeStart bool `parquet:"episode_start,snappy"`
}

// EpisodeRow represents a contiguous run of flagged buckets.
type EpisodeRow struct {
	// Category is the top-level taxonomy category of the episode
	Category string `parquet:"category,snappy"`

	// Start is the period of the first flagged bucket (UTC)
	Start time.Time `parquet:"start,snappy"`

	// End is the period of the last flagged bucket (UTC)
	End time.Time `parquet:"end,snappy"`

	// Duration is the number of contiguous flagged buckets
	Duration int32 `parquet:"duration,snappy"`

	// PeakCount is the highest bucket count within the episode
	PeakCount int32 `parquet:"peak_count,snappy"`

	// TotalExcess is the summed count above baseline across the episode
	TotalExcess float64 `parquet:"total_excess,snappy"`

	// Intensity is the peak member intensity within the episode
	Intensity float64 `parquet:"intensity,snappy"`
}

// TimelineRow represents one bucket of an aggregated per-category timeline.
type TimelineRow struct {
	// Category is the top-level taxonomy category of the bucket
	Category string `parquet:"category,snappy"`

	// Period is the start of the time bucket (UTC)
	Period time.Time `parquet:"period,snappy"`

	// Count is the number of observations in the bucket
	Count int32 `parquet:"count,snappy"`
}

// WriteDetectionRunsParquet writes a slice of DetectionRun structs to a Parquet file.
func WriteDetectionRunsParquet(data []DetectionRun, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the DetectionRun struct tags
	writer := parquet.NewGenericWriter[DetectionRun](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteBurstRowsParquet writes a slice of BurstRow structs to a Parquet file.
func WriteBurstRowsParquet(data []BurstRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the BurstRow struct tags
	writer := parquet.NewGenericWriter[BurstRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteEpisodeRowsParquet writes a slice of EpisodeRow structs to a Parquet file.
func WriteEpisodeRowsParquet(data []EpisodeRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the EpisodeRow struct tags
	writer := parquet.NewGenericWriter[EpisodeRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteTimelineRowsParquet writes a slice of TimelineRow structs to a Parquet file.
func WriteTimelineRowsParquet(data []TimelineRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the TimelineRow struct tags
	writer := parquet.NewGenericWriter[TimelineRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchDetectionRuns generates sample DetectionRun data for demonstration.
func MockFetchDetectionRuns() []DetectionRun {
	now := time.Now()
	startedAt1 := now.Add(-2 * time.Hour)
	finishedAt1 := now.Add(-1*time.Hour - 55*time.Minute)
	durationMs1 := finishedAt1.Sub(startedAt1).Milliseconds()
	params1 := `{"granularity":"week","sensitivity":1.0,"window":5}`

	startedAt2 := now.Add(-24 * time.Hour)
	finishedAt2 := now.Add(-23*time.Hour - 58*time.Minute)
	durationMs2 := finishedAt2.Sub(startedAt2).Milliseconds()
	params2 := `{"granularity":"month","sensitivity":2.5,"window":0}`

	startedAt3 := now.Add(-10 * time.Minute)
	// Note: FinishedAt and DurationMs are nil to demonstrate nullable fields

	return []DetectionRun{
		{
			RunID:      1,
			StartedAt:  startedAt1,
			FinishedAt: &finishedAt1,
			DurationMs: &durationMs1,
			Categories: 12,
			Bursts:     34,
			Params:     params1,
		},
		{
			RunID:      2,
			StartedAt:  startedAt2,
			FinishedAt: &finishedAt2,
			DurationMs: &durationMs2,
			Categories: 8,
			Bursts:     5,
			Params:     params2,
		},
		{
			RunID:      3,
			StartedAt:  startedAt3,
			FinishedAt: nil, // Still running - nullable field
			DurationMs: nil, // Not yet calculated - nullable field
			Categories: 0,
			Bursts:     0,
			Params:     params1,
		},
	}
}

// MockFetchBurstRows generates sample BurstRow data for demonstration.
func MockFetchBurstRows() []BurstRow {
	june := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	return []BurstRow{
		{
			Category:     "Military Activity",
			Period:       june,
			Count:        84,
			Baseline:     21.5,
			Intensity:    3.4,
			EpisodeStart: true,
		},
		{
			Category:     "Military Activity",
			Period:       june.AddDate(0, 1, 0),
			Count:        52,
			Baseline:     23.0,
			Intensity:    1.6,
			EpisodeStart: false,
		},
		{
			Category:     "Civilian Harm",
			Period:       june.AddDate(0, 2, 0),
			Count:        31,
			Baseline:     12.2,
			Intensity:    0.9,
			EpisodeStart: true,
		},
	}
}

// ConvertRunRecords converts schema.RunRecord to DetectionRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []DetectionRun {
	result := make([]DetectionRun, len(records))
	for i, record := range records {
		result[i] = DetectionRun{
			RunID:      record.RunID,
			StartedAt:  record.StartedAt,
			FinishedAt: record.FinishedAt,
			DurationMs: record.DurationMs,
			Categories: int32(record.Categories),
			Bursts:     int32(record.Bursts),
			Params:     record.Params,
		}
	}
	return result
}

// ConvertBurstPoints converts schema.BurstPoint to BurstRow for Parquet export.
func ConvertBurstPoints(points []schema.BurstPoint) []BurstRow {
	result := make([]BurstRow, len(points))
	for i, point := range points {
		result[i] = BurstRow{
			Category:     point.Category,
			Period:       point.Period,
			Count:        int32(point.Count),
			Baseline:     point.Baseline,
			Intensity:    point.Intensity,
			EpisodeStart: point.EpisodeStart,
		}
	}
	return result
}

// ConvertSeriesPoints converts schema.SeriesPoint to TimelineRow for Parquet export.
func ConvertSeriesPoints(series []schema.SeriesPoint) []TimelineRow {
	result := make([]TimelineRow, len(series))
	for i, p := range series {
		result[i] = TimelineRow{
			Category: p.Category,
			Period:   p.Period,
			Count:    int32(p.Count),
		}
	}
	return result
}

// ConvertEpisodes converts schema.BurstEpisode to EpisodeRow for Parquet export.
func ConvertEpisodes(episodes []schema.BurstEpisode) []EpisodeRow {
	result := make([]EpisodeRow, len(episodes))
	for i, episode := range episodes {
		result[i] = EpisodeRow{
			Category:    episode.Category,
			Start:       episode.Start,
			End:         episode.End,
			Duration:    int32(episode.Duration),
			PeakCount:   int32(episode.PeakCount),
			TotalExcess: episode.TotalExcess,
			Intensity:   episode.Intensity,
		}
	}
	return result
}

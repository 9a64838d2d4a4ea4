package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/burstline/burstline/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []DetectionRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := now.Add(-1 * time.Hour)
	durationMs1 := endTime1.Sub(startTime1).Milliseconds()

	startTime2 := now.Add(-10 * time.Minute)
	// Second run is still in flight, so its nullable fields stay nil

	return []DetectionRun{
		{
			RunID:      1,
			StartedAt:  startTime1,
			FinishedAt: &endTime1,
			DurationMs: &durationMs1,
			Categories: 14,
			Bursts:     9,
			Params:     `{"granularity":"month","sensitivity":1.5,"window":5}`,
		},
		{
			RunID:      2,
			StartedAt:  startTime2,
			FinishedAt: nil,
			DurationMs: nil,
			Categories: 0,
			Bursts:     0,
			Params:     `{"granularity":"week","sensitivity":2,"window":0}`,
		},
	}
}

func TestDetectionRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	runSchema := parquet.SchemaOf(new(DetectionRun))
	require.NotNil(t, runSchema)

	expectedColumns := []string{
		"run_id",
		"started_at",
		"finished_at",
		"duration_ms",
		"categories",
		"bursts",
		"params",
	}

	for _, colName := range expectedColumns {
		col, ok := runSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestBurstRowStructTags(t *testing.T) {
	rowSchema := parquet.SchemaOf(new(BurstRow))
	require.NotNil(t, rowSchema)

	expectedColumns := []string{
		"category",
		"period",
		"count",
		"baseline",
		"intensity",
		"episode_start",
	}

	for _, colName := range expectedColumns {
		col, ok := rowSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestEpisodeRowStructTags(t *testing.T) {
	rowSchema := parquet.SchemaOf(new(EpisodeRow))
	require.NotNil(t, rowSchema)

	expectedColumns := []string{
		"category",
		"start",
		"end",
		"duration",
		"peak_count",
		"total_excess",
		"intensity",
	}

	for _, colName := range expectedColumns {
		col, ok := rowSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteDetectionRunsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "runs.parquet")

	data := sampleRuns()
	err := WriteDetectionRunsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[DetectionRun](file)
	defer reader.Close()

	readData := make([]DetectionRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := range data {
		assert.Equal(t, data[i].RunID, readData[i].RunID, "RunID should match")
		assert.Equal(t, data[i].Categories, readData[i].Categories, "Categories should match")
		assert.Equal(t, data[i].Bursts, readData[i].Bursts, "Bursts should match")
		assert.Equal(t, data[i].Params, readData[i].Params, "Params should match")
		assert.WithinDuration(t, data[i].StartedAt, readData[i].StartedAt, time.Nanosecond, "StartedAt should match within nanosecond precision")

		if data[i].FinishedAt == nil {
			assert.Nil(t, readData[i].FinishedAt, "FinishedAt should be nil")
		} else {
			require.NotNil(t, readData[i].FinishedAt, "FinishedAt should not be nil")
			assert.WithinDuration(t, *data[i].FinishedAt, *readData[i].FinishedAt, time.Nanosecond, "FinishedAt should match within nanosecond precision")
		}

		if data[i].DurationMs == nil {
			assert.Nil(t, readData[i].DurationMs, "DurationMs should be nil")
		} else {
			require.NotNil(t, readData[i].DurationMs, "DurationMs should not be nil")
			assert.Equal(t, *data[i].DurationMs, *readData[i].DurationMs, "DurationMs should match")
		}
	}
}

func TestWriteBurstRowsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "bursts.parquet")

	data := []BurstRow{
		{
			Category:     "Military Activity",
			Period:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Count:        52,
			Baseline:     12.5,
			Intensity:    3.1,
			EpisodeStart: true,
		},
		{
			Category:     "Military Activity",
			Period:       time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
			Count:        48,
			Baseline:     13.0,
			Intensity:    2.7,
			EpisodeStart: false,
		},
	}

	err := WriteBurstRowsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[BurstRow](file)
	defer reader.Close()

	readData := make([]BurstRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := range data {
		assert.Equal(t, data[i].Category, readData[i].Category, "Category should match")
		assert.WithinDuration(t, data[i].Period, readData[i].Period, time.Nanosecond, "Period should match")
		assert.Equal(t, data[i].Count, readData[i].Count, "Count should match")
		assert.InDelta(t, data[i].Baseline, readData[i].Baseline, 0.001, "Baseline should match")
		assert.InDelta(t, data[i].Intensity, readData[i].Intensity, 0.001, "Intensity should match")
		assert.Equal(t, data[i].EpisodeStart, readData[i].EpisodeStart, "EpisodeStart should match")
	}
}

func TestWriteEpisodeRowsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "episodes.parquet")

	data := []EpisodeRow{
		{
			Category:    "Economic Impact",
			Start:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC),
			Duration:    3,
			PeakCount:   52,
			TotalExcess: 84.5,
			Intensity:   3.1,
		},
	}

	err := WriteEpisodeRowsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[EpisodeRow](file)
	defer reader.Close()

	readData := make([]EpisodeRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	require.Equal(t, len(data), n, "Should read all records")

	assert.Equal(t, data[0].Category, readData[0].Category)
	assert.Equal(t, data[0].Duration, readData[0].Duration)
	assert.Equal(t, data[0].PeakCount, readData[0].PeakCount)
	assert.InDelta(t, data[0].TotalExcess, readData[0].TotalExcess, 0.001)
	assert.InDelta(t, data[0].Intensity, readData[0].Intensity, 0.001)
}

func TestWriteDetectionRunsParquet_EmptyData(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_runs.parquet")

	err := WriteDetectionRunsParquet([]DetectionRun{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteDetectionRunsParquet_InvalidPath(t *testing.T) {
	err := WriteDetectionRunsParquet(sampleRuns(), "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestConvertRunRecords(t *testing.T) {
	now := time.Now()
	finished := now.Add(time.Minute)
	durationMs := int64(60000)

	records := []schema.RunRecord{
		{
			RunID:      7,
			StartedAt:  now,
			FinishedAt: &finished,
			DurationMs: &durationMs,
			Categories: 5,
			Bursts:     3,
			Params:     `{"granularity":"day"}`,
		},
		{
			RunID:     8,
			StartedAt: now,
		},
	}

	result := ConvertRunRecords(records)
	require.Len(t, result, 2)

	assert.Equal(t, int64(7), result[0].RunID)
	assert.Equal(t, int32(5), result[0].Categories)
	assert.Equal(t, int32(3), result[0].Bursts)
	require.NotNil(t, result[0].FinishedAt)
	assert.Equal(t, finished, *result[0].FinishedAt)
	require.NotNil(t, result[0].DurationMs)
	assert.Equal(t, durationMs, *result[0].DurationMs)

	assert.Equal(t, int64(8), result[1].RunID)
	assert.Nil(t, result[1].FinishedAt)
	assert.Nil(t, result[1].DurationMs)
}

func TestConvertBurstPoints(t *testing.T) {
	points := []schema.BurstPoint{
		{
			Category:     "Political Statements",
			Period:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Count:        40,
			Baseline:     11.2,
			Intensity:    2.4,
			EpisodeStart: true,
		},
	}

	result := ConvertBurstPoints(points)
	require.Len(t, result, 1)
	assert.Equal(t, "Political Statements", result[0].Category)
	assert.Equal(t, int32(40), result[0].Count)
	assert.InDelta(t, 11.2, result[0].Baseline, 0.001)
	assert.True(t, result[0].EpisodeStart)
}

func TestConvertEpisodes(t *testing.T) {
	episodes := []schema.BurstEpisode{
		{
			Category:    "Military Activity",
			Start:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
			Duration:    2,
			PeakCount:   52,
			TotalExcess: 70.0,
			Intensity:   3.1,
		},
	}

	result := ConvertEpisodes(episodes)
	require.Len(t, result, 1)
	assert.Equal(t, "Military Activity", result[0].Category)
	assert.Equal(t, int32(2), result[0].Duration)
	assert.Equal(t, int32(52), result[0].PeakCount)
	assert.InDelta(t, 70.0, result[0].TotalExcess, 0.001)
}

func TestWriteTimelineRowsParquet(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "timeline.parquet")

	data := []TimelineRow{
		{
			Category: "Civilian Harm",
			Period:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Count:    12,
		},
		{
			Category: "Civilian Harm",
			Period:   time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			Count:    9,
		},
	}

	err := WriteTimelineRowsParquet(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[TimelineRow](file)
	defer reader.Close()

	readData := make([]TimelineRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := range data {
		assert.Equal(t, data[i].Category, readData[i].Category, "Category should match")
		assert.WithinDuration(t, data[i].Period, readData[i].Period, time.Nanosecond, "Period should match")
		assert.Equal(t, data[i].Count, readData[i].Count, "Count should match")
	}
}

func TestConvertSeriesPoints(t *testing.T) {
	series := []schema.SeriesPoint{
		{
			Category: "Energy Infrastructure",
			Period:   time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			Count:    17,
		},
	}

	result := ConvertSeriesPoints(series)
	require.Len(t, result, 1)
	assert.Equal(t, "Energy Infrastructure", result[0].Category)
	assert.Equal(t, int32(17), result[0].Count)
	assert.Equal(t, series[0].Period, result[0].Period)
}

func TestMockFetchDetectionRuns(t *testing.T) {
	data := MockFetchDetectionRuns()
	require.NotEmpty(t, data, "Mock data should not be empty")
	assert.Len(t, data, 3, "Should return 3 mock records")

	// Verify the structure of mock data
	assert.Equal(t, int64(1), data[0].RunID)
	assert.NotNil(t, data[0].FinishedAt, "First record should have FinishedAt")
	assert.NotNil(t, data[0].DurationMs, "First record should have DurationMs")

	// Third record should have nil nullable fields
	assert.Equal(t, int64(3), data[2].RunID)
	assert.Nil(t, data[2].FinishedAt, "Third record should have nil FinishedAt")
	assert.Nil(t, data[2].DurationMs, "Third record should have nil DurationMs")
}

func TestMockFetchBurstRows(t *testing.T) {
	data := MockFetchBurstRows()
	require.NotEmpty(t, data, "Mock data should not be empty")
	assert.Len(t, data, 3, "Should return 3 mock records")

	// Verify the structure of mock data
	assert.Equal(t, "Military Activity", data[0].Category)
	assert.True(t, data[0].EpisodeStart, "First record should start an episode")
	assert.False(t, data[1].EpisodeStart, "Second record should continue the episode")
}

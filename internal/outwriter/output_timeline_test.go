package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/burstline/burstline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimeline() []schema.SeriesPoint {
	return []schema.SeriesPoint{
		{Category: "Civilian Harm", Period: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Count: 12},
		{Category: "Civilian Harm", Period: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Count: 9},
		{Category: "Military Activity", Period: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Count: 30},
	}
}

func TestWriteCSVResultsForTimeline(t *testing.T) {
	_, intFmt := createFormatters(2)
	cfg := tableConfig()

	var buf bytes.Buffer
	err := writeCSVResultsForTimeline(&buf, sampleTimeline(), cfg, intFmt)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4) // header + 3 rows

	assert.Equal(t, "category,period,count", lines[0])
	assert.Equal(t, "Civilian Harm,2023-01,12", lines[1])
	assert.Equal(t, "Military Activity,2023-01,30", lines[3])
}

func TestWriteTimelineTable(t *testing.T) {
	_, intFmt := createFormatters(2)
	cfg := tableConfig()

	var buf bytes.Buffer
	err := writeTimelineTable(sampleTimeline(), cfg, intFmt, 50*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Civilian Harm")
	assert.Contains(t, out, "Military Activity")
	assert.Contains(t, out, "Showing 3 buckets across 2 categories (total observations: 51)")
	assert.Contains(t, out, "Timeline aggregation completed in 50ms")
}

func TestPrintTimelineJSONRoundTrip(t *testing.T) {
	cfg := tableConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = t.TempDir() + "/timeline.json"

	err := PrintTimelineResults(sampleTimeline(), cfg, time.Second)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var series []schema.SeriesPoint
	require.NoError(t, json.Unmarshal(data, &series))
	assert.Equal(t, sampleTimeline(), series)
}

func TestPrintTimelineParquetWritesFile(t *testing.T) {
	cfg := tableConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = t.TempDir() + "/timeline.parquet"

	err := PrintTimelineResults(sampleTimeline(), cfg, time.Second)
	require.NoError(t, err)
	assert.FileExists(t, cfg.OutputFile)
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/internal/parquet"
	"github.com/burstline/burstline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTimelineResults outputs the aggregated per-category timeline,
// dispatching based on the output format configured.
func PrintTimelineResults(series []schema.SeriesPoint, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	_, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printTimelineJSONResults(series, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printTimelineCSVResults(series, cfg, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printTimelineParquetResults(series, cfg); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTimelineTable(series, cfg, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printTimelineJSONResults handles opening the file and calling the JSON writer.
func printTimelineJSONResults(series []schema.SeriesPoint, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, series)
	}, "Wrote JSON")
}

// printTimelineCSVResults handles opening the file and calling the CSV writer.
func printTimelineCSVResults(series []schema.SeriesPoint, cfg *contract.Config, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForTimeline(w, series, cfg, intFmt)
	}, "Wrote CSV")
}

// printTimelineParquetResults writes the timeline to a parquet file.
func printTimelineParquetResults(series []schema.SeriesPoint, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errParquetNeedsFile
	}
	rows := parquet.ConvertSeriesPoints(series)
	if err := parquet.WriteTimelineRowsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	contract.LogInfo("Wrote %d timeline rows to %s", len(rows), cfg.OutputFile)
	return nil
}

// writeTimelineTable prints the timeline in a three-column table.
func writeTimelineTable(series []schema.SeriesPoint, cfg *contract.Config, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Category", "Period", "Count"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Prepare Data Rows
	maxWidth := getMaxTableCategoryWidth(cfg)
	var data [][]string
	categories := make(map[string]struct{})
	total := 0
	for _, p := range series {
		categories[p.Category] = struct{}{}
		total += p.Count
		row := []string{
			contract.TruncateText(p.Category, maxWidth), // Category
			cfg.Granularity.FormatPeriod(p.Period),      // Period
			fmt.Sprintf(intFmt, p.Count),                // Count
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d buckets across %d categories (total observations: %d)\n", len(series), len(categories), total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Timeline aggregation completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForTimeline writes the timeline in CSV format.
func writeCSVResultsForTimeline(w io.Writer, series []schema.SeriesPoint, cfg *contract.Config, intFmt string) error {
	header := []string{
		"category",
		"period",
		"count",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, p := range series {
			rec := []string{
				p.Category,                             // Category
				cfg.Granularity.FormatPeriod(p.Period), // Period
				fmt.Sprintf(intFmt, p.Count),           // Count
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

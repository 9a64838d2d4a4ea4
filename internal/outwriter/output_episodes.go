package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/internal/parquet"
	"github.com/burstline/burstline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintEpisodeResults outputs the ranked burst episodes with aggregate
// statistics, dispatching based on the output format configured.
func PrintEpisodeResults(result *schema.DetectionResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printEpisodeJSONResults(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printEpisodeCSVResults(result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printEpisodeParquetResults(result, cfg); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEpisodeTable(result, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printEpisodeJSONResults handles opening the file and calling the JSON writer.
func printEpisodeJSONResults(result *schema.DetectionResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForEpisodes(w, result)
	}, "Wrote JSON")
}

// printEpisodeCSVResults handles opening the file and calling the CSV writer.
func printEpisodeCSVResults(result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForEpisodes(w, result, cfg, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// printEpisodeParquetResults writes the episodes to a parquet file.
func printEpisodeParquetResults(result *schema.DetectionResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errParquetNeedsFile
	}
	rows := parquet.ConvertEpisodes(result.Episodes)
	if err := parquet.WriteEpisodeRowsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	contract.LogInfo("Wrote %d episode rows to %s", len(rows), cfg.OutputFile)
	return nil
}

// writeEpisodeTable generates and writes the human-readable table plus the
// aggregate statistics block.
func writeEpisodeTable(result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Category", "Start", "End", "Duration", "Peak", "Excess", "Intensity", "Label"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxWidth := getMaxTableCategoryWidth(cfg)
	var data [][]string
	for i, e := range result.Episodes {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncateText(e.Category, maxWidth), // Category
			cfg.Granularity.FormatPeriod(e.Start),       // Start
			cfg.Granularity.FormatPeriod(e.End),         // End
			fmt.Sprintf(intFmt, e.Duration),             // Duration in buckets
			fmt.Sprintf(intFmt, e.PeakCount),            // Peak count
			fmtFloat(e.TotalExcess),                     // Total excess
			fmtFloat(e.Intensity),                       // Intensity
			intensityLabel(cfg, e.Intensity),            // Label
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

	// 5. Aggregate statistics over all detected episodes, not just the
	// ranked page shown above.
	s := result.Summary
	if _, err := fmt.Fprintf(writer, "Total episodes: %d (total burst time: %d buckets)\n", s.TotalBursts, s.TotalBurstTime); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Duration: avg %s, std %s. Intensity: avg %s, std %s, min %s, max %s\n",
		fmtFloat(s.AverageDuration), fmtFloat(s.StdDuration),
		fmtFloat(s.AverageIntensity), fmtFloat(s.StdIntensity),
		fmtFloat(s.MinIntensity), fmtFloat(s.MaxIntensity)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Detection completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForEpisodes writes the episodes in CSV format.
func writeCSVResultsForEpisodes(w io.Writer, result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"category",
		"start",
		"end",
		"duration",
		"peak_count",
		"total_excess",
		"intensity",
		"label",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, e := range result.Episodes {
			rec := []string{
				strconv.Itoa(i + 1),                   // Rank
				e.Category,                            // Category
				cfg.Granularity.FormatPeriod(e.Start), // Start
				cfg.Granularity.FormatPeriod(e.End),   // End
				fmt.Sprintf(intFmt, e.Duration),       // Duration in buckets
				fmt.Sprintf(intFmt, e.PeakCount),      // Peak count
				fmtFloat(e.TotalExcess),               // Total excess
				fmtFloat(e.Intensity),                 // Intensity
				contract.GetPlainLabel(e.Intensity),   // Label
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForEpisodes writes the episodes in JSON format.
func writeJSONResultsForEpisodes(w io.Writer, result *schema.DetectionResult) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONBurstEpisode struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.BurstEpisode
	}

	episodes := make([]JSONBurstEpisode, len(result.Episodes))
	for i, e := range result.Episodes {
		episodes[i] = JSONBurstEpisode{
			Rank:         i + 1,
			Label:        contract.GetPlainLabel(e.Intensity),
			BurstEpisode: e,
		}
	}

	output := struct {
		Params     schema.DetectionParams `json:"params"`
		Episodes   []JSONBurstEpisode     `json:"episodes"`
		Summary    schema.BurstSummary    `json:"summary"`
		Categories int                    `json:"categories"`
		Skipped    []string               `json:"skipped,omitempty"`
	}{
		Params:     result.Params,
		Episodes:   episodes,
		Summary:    result.Summary,
		Categories: result.Categories,
		Skipped:    result.Skipped,
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}

package outwriter

import (
	"encoding/csv"
	"errors"
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

// errParquetNeedsFile is returned when parquet output is requested without a
// destination file. Parquet is a binary format and never goes to stdout.
var errParquetNeedsFile = errors.New("parquet output requires --output-file")

// PrintBurstResults outputs the ranked burst points, dispatching based on the
// output format configured.
func PrintBurstResults(result *schema.DetectionResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printBurstJSONResults(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printBurstCSVResults(result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printBurstParquetResults(result, cfg); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBurstTable(result, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printBurstJSONResults handles opening the file and calling the JSON writer.
func printBurstJSONResults(result *schema.DetectionResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForBursts(w, result)
	}, "Wrote JSON")
}

// printBurstCSVResults handles opening the file and calling the CSV writer.
func printBurstCSVResults(result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForBursts(w, result, cfg, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// printBurstParquetResults writes the flagged buckets to a parquet file.
func printBurstParquetResults(result *schema.DetectionResult, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errParquetNeedsFile
	}
	rows := parquet.ConvertBurstPoints(result.Points)
	if err := parquet.WriteBurstRowsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	contract.LogInfo("Wrote %d burst rows to %s", len(rows), cfg.OutputFile)
	return nil
}

// writeBurstTable generates and writes the human-readable table.
func writeBurstTable(result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Category", "Period", "Count", "Baseline", "Intensity", "Label"}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxWidth := getMaxTableCategoryWidth(cfg)
	var data [][]string
	for i, p := range result.Points {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncateText(p.Category, maxWidth),   // Category
			cfg.Granularity.FormatPeriod(p.Period),        // Period
			fmt.Sprintf(intFmt, p.Count),                  // Count
			fmtFloat(p.Baseline),                          // Baseline
			fmtFloat(p.Intensity),                         // Intensity
			intensityLabel(cfg, p.Intensity),              // Label
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

	// Compute summary stats
	episodeStarts := 0
	for _, p := range result.Points {
		if p.EpisodeStart {
			episodeStarts++
		}
	}
	if _, err := fmt.Fprintf(writer, "Showing top %d bursts across %d categories (episode starts: %d, skipped categories: %d)\n",
		len(result.Points), result.Categories, episodeStarts, len(result.Skipped)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Detection completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForBursts writes the flagged buckets in CSV format.
func writeCSVResultsForBursts(w io.Writer, result *schema.DetectionResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"category",
		"period",
		"count",
		"baseline",
		"intensity",
		"label",
		"episode_start",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, p := range result.Points {
			rec := []string{
				strconv.Itoa(i + 1),                    // Rank
				p.Category,                             // Category
				cfg.Granularity.FormatPeriod(p.Period), // Period
				fmt.Sprintf(intFmt, p.Count),           // Count
				fmtFloat(p.Baseline),                   // Baseline
				fmtFloat(p.Intensity),                  // Intensity
				contract.GetPlainLabel(p.Intensity),    // Label
				strconv.FormatBool(p.EpisodeStart),     // Episode start marker
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONResultsForBursts writes the detection result in JSON format.
func writeJSONResultsForBursts(w io.Writer, result *schema.DetectionResult) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONBurstPoint struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.BurstPoint
	}

	points := make([]JSONBurstPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = JSONBurstPoint{
			Rank:       i + 1,
			Label:      contract.GetPlainLabel(p.Intensity),
			BurstPoint: p,
		}
	}

	output := struct {
		Params     schema.DetectionParams `json:"params"`
		Points     []JSONBurstPoint       `json:"points"`
		Summary    schema.BurstSummary    `json:"summary"`
		Categories int                    `json:"categories"`
		Skipped    []string               `json:"skipped,omitempty"`
	}{
		Params:     result.Params,
		Points:     points,
		Summary:    result.Summary,
		Categories: result.Categories,
		Skipped:    result.Skipped,
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}

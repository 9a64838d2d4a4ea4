package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintComparisonResults outputs the per-category deltas between two slices,
// dispatching based on the output format configured.
func PrintComparisonResults(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printComparisonJSONResults(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printComparisonCSVResults(result, cfg, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for comparison results")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(result, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printComparisonJSONResults handles opening the file and calling the JSON writer.
func printComparisonJSONResults(result schema.ComparisonResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON")
}

// printComparisonCSVResults handles opening the file and calling the CSV writer.
func printComparisonCSVResults(result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForComparison(w, result, fmtFloat, intFmt)
	}, "Wrote CSV")
}

// writeComparisonTable generates and writes the human-readable table.
func writeComparisonTable(result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Category", "Count A", "Count B", "Delta", "Share A %", "Share B %"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxWidth := getMaxTableCategoryWidth(cfg)
	var data [][]string
	for i, d := range result.Categories {
		delta := fmt.Sprintf(intFmt, d.Delta)
		if d.Delta > 0 {
			delta = "+" + delta
		}
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncateText(d.Category, maxWidth), // Category
			fmt.Sprintf(intFmt, d.CountA),               // Count in slice A
			fmt.Sprintf(intFmt, d.CountB),               // Count in slice B
			delta,                                       // Signed delta
			fmtFloat(d.ShareA),                          // Share of slice A
			fmtFloat(d.ShareB),                          // Share of slice B
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

	if _, err := fmt.Fprintf(writer, "%s\n", result.Summary); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Totals: %d vs %d across %d categories\n", result.TotalA, result.TotalB, len(result.Categories)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Comparison completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForComparison writes the comparison in CSV format.
func writeCSVResultsForComparison(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"category",
		"count_a",
		"count_b",
		"delta",
		"share_a",
		"share_b",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, d := range result.Categories {
			rec := []string{
				strconv.Itoa(i + 1),           // Rank
				d.Category,                    // Category
				fmt.Sprintf(intFmt, d.CountA), // Count in slice A
				fmt.Sprintf(intFmt, d.CountB), // Count in slice B
				fmt.Sprintf(intFmt, d.Delta),  // Delta
				fmtFloat(d.ShareA),            // Share of slice A
				fmtFloat(d.ShareB),            // Share of slice B
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

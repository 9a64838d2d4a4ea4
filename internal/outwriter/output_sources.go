package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintSourceCatalog outputs the corpus source listing, dispatching based on
// the output format configured.
func PrintSourceCatalog(catalog schema.SourceCatalog, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	_, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printSourcesJSONResults(catalog, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printSourcesCSVResults(catalog, cfg, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for the source catalog")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSourcesTable(catalog, cfg, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printSourcesJSONResults handles opening the file and calling the JSON writer.
func printSourcesJSONResults(catalog schema.SourceCatalog, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, catalog)
	}, "Wrote JSON")
}

// printSourcesCSVResults handles opening the file and calling the CSV writer.
func printSourcesCSVResults(catalog schema.SourceCatalog, cfg *contract.Config, intFmt string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVResultsForSources(w, catalog, intFmt)
	}, "Wrote CSV")
}

// writeSourcesTable prints the source catalog in a two-column table followed
// by the language list and the corpus date range.
func writeSourcesTable(catalog schema.SourceCatalog, cfg *contract.Config, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Source", "Records"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Prepare Data Rows
	total := 0
	var data [][]string
	for i, s := range catalog.Sources {
		total += s.Records
		row := []string{
			strconv.Itoa(i + 1),            // Rank
			s.Name,                         // Source
			fmt.Sprintf(intFmt, s.Records), // Records
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

	languages := "none"
	if len(catalog.Languages) > 0 {
		languages = strings.Join(catalog.Languages, ", ")
	}
	if _, err := fmt.Fprintf(writer, "%d sources with %d records. Languages: %s\n", len(catalog.Sources), total, languages); err != nil {
		return err
	}
	if !catalog.MinDate.IsZero() && !catalog.MaxDate.IsZero() {
		if _, err := fmt.Fprintf(writer, "Corpus spans %s to %s\n",
			catalog.MinDate.Format(contract.DateFormat), catalog.MaxDate.Format(contract.DateFormat)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Catalog listing completed in %v. Corpus backend: %s\n", duration, cfg.CorpusBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForSources writes the source catalog in CSV format.
func writeCSVResultsForSources(w io.Writer, catalog schema.SourceCatalog, intFmt string) error {
	header := []string{
		"rank",
		"source",
		"records",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, s := range catalog.Sources {
			rec := []string{
				strconv.Itoa(i + 1),            // Rank
				s.Name,                         // Source
				fmt.Sprintf(intFmt, s.Records), // Records
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

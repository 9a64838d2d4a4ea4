package iocache

import (
	"errors"
	"fmt"

	"github.com/burstline/burstline/internal/parquet"
)

// ExecuteRunsExport performs the actual export of run tracking data to a Parquet file.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalEntries == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total detection runs: %d\n", status.TotalEntries)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve detection runs: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteDetectionRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write detection runs: %w", err)
	}
	fmt.Printf("Exported %d detection runs to: %s\n", len(parquetRuns), runsFile)

	fmt.Println("\nExport complete! The Parquet file can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}

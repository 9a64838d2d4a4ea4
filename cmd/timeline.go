package cmd

import (
	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// timelineCmd aggregates the corpus without running detection.
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show per-category bucket counts without detection.",
	Long: `Aggregate the corpus into per-category calendar buckets and print
the raw counts. No detection is performed; this is the input series
that detect and episodes analyze.

Useful for eyeballing the data before tuning sensitivity, or for
feeding the aggregated series into external tooling.

Examples:
  # Monthly counts for the whole corpus
  burstline timeline --corpus-db-connect corpus.db

  # Daily counts for a narrow window
  burstline timeline --granularity day --start 2022-02-20 --end 2022-03-10

  # Export the series to parquet
  burstline timeline --output parquet --output-file timeline.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTimeline(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run timeline aggregation", err)
		}
	},
}

package cmd

import (
	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// detectCmd performs burst detection over the corpus timeline.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the top bursts ranked by intensity.",
	Long: `Scan the per-category corpus timelines and flag the buckets whose
activity rises far above the local rolling baseline.

Each category is analyzed independently against its own history, so a
quiet category's surge is just as visible as a loud one's. Results are
ranked by intensity, a scale-free measure of how far a count sits above
its baseline.

Examples:
  # Detect monthly bursts across the whole corpus
  burstline detect --corpus-db-connect corpus.db

  # Weekly buckets with higher sensitivity
  burstline detect --granularity week --sensitivity 2.5

  # Restrict to specific sources and a date range
  burstline detect --sources telegram --start 2022-02-01 --end 2023-01-01

  # Export findings to CSV for tracking
  burstline detect --output csv --output-file bursts.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDetect(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run burst detection", err)
		}
	},
}

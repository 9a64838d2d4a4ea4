package cmd

import (
	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd compares two filtered slices of the corpus.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare per-category activity between two corpus slices.",
	Long: `Aggregate two filtered slices of the corpus and show how each
category's activity differs between them.

The first slice uses the regular --sources/--languages/--start/--end
filters; the second slice uses the -b variants. At least one -b flag
is required. Categories are ranked by the magnitude of their delta.

Examples:
  # Same sources, before and after a date
  burstline compare --end 2022-06-01 --start-b 2022-06-01

  # Telegram versus news coverage
  burstline compare --sources telegram --sources-b news

  # Different languages over the same window
  burstline compare --languages ru --languages-b uk --start 2022-02-01`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}

package cmd

import (
	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// episodesCmd merges flagged buckets into contiguous episodes.
var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Show contiguous burst episodes with aggregate statistics.",
	Long: `Run burst detection and merge temporally adjacent flagged buckets
into episodes: maximal runs of elevated activity within one category.

Episodes carry their duration, peak count, total excess above baseline
and peak intensity, plus summary statistics over all episodes found.
A single isolated flagged bucket is an episode of duration 1.

Examples:
  # List episodes ranked by intensity
  burstline episodes --corpus-db-connect corpus.db

  # Quarterly episodes for one source
  burstline episodes --granularity quarter --sources news

  # Export episodes to parquet for analytics
  burstline episodes --output parquet --output-file episodes.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEpisodes(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run episode detection", err)
		}
	},
}

package cmd

import (
	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// sourcesCmd lists the distinct corpus sources.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List corpus sources, languages and date range.",
	Long: `List every distinct source in the corpus with its record count,
the languages present, and the publication date range the corpus spans.

Use this to discover valid values for the --sources and --languages
filters before running detection.

Examples:
  # List all sources
  burstline sources --corpus-db-connect corpus.db

  # Machine-readable listing
  burstline sources --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSources(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list sources", err)
		}
	},
}

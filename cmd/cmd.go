// Package cmd defines the command-line interface for burstline.
package cmd

import (
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("corpus-backend", string(schema.SQLiteBackend), "Corpus backend: sqlite or mysql or postgresql or duckdb")
	rootCmd.PersistentFlags().String("corpus-db-connect", "", "Corpus database connection string (file path for sqlite/duckdb)")
	rootCmd.PersistentFlags().String("sources", "", "Comma-separated list of sources to include")
	rootCmd.PersistentFlags().String("languages", "", "Comma-separated list of languages to include")
	rootCmd.PersistentFlags().String("start", "", "Start date in YYYY-MM-DD, RFC3339 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in YYYY-MM-DD, RFC3339 or time ago")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.MonthGranularity), "Bucket size: day or week or month or quarter or year")
	rootCmd.PersistentFlags().Float64P("sensitivity", "s", schema.DefaultSensitivity, "Detection sensitivity in (0, 10]; higher flags more points")
	rootCmd.PersistentFlags().IntP("window", "w", 0, "Rolling window size in buckets (0 = automatic)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Timeline cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("sources-b", "", "Comma-separated list of sources for the second slice")
	compareCmd.Flags().String("languages-b", "", "Comma-separated list of languages for the second slice")
	compareCmd.Flags().String("start-b", "", "Start date for the second slice")
	compareCmd.Flags().String("end-b", "", "End date for the second slice")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}

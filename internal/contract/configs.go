package contract

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/burstline/burstline/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// DateFormat is the default date representation for flags and display.
const DateFormat = "2006-01-02"

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	CorpusBackend   schema.DatabaseBackend
	CorpusDBConnect string // Please use env var as this is plaintext

	Sources   []string
	Languages []string
	StartTime time.Time
	EndTime   time.Time

	Granularity schema.Granularity
	Sensitivity float64
	Window      int

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	// Second slice for the compare command.
	CompareMode bool
	SourcesB    []string
	LanguagesB  []string
	StartTimeB  time.Time
	EndTimeB    time.Time

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	CorpusBackend   string  `mapstructure:"corpus-backend"`
	CorpusDBConnect string  `mapstructure:"corpus-db-connect"`
	Sources         string  `mapstructure:"sources"`
	Languages       string  `mapstructure:"languages"`
	Start           string  `mapstructure:"start"`
	End             string  `mapstructure:"end"`
	Granularity     string  `mapstructure:"granularity"`
	Sensitivity     float64 `mapstructure:"sensitivity"`
	Window          int     `mapstructure:"window"`
	Limit           int     `mapstructure:"limit"`
	Workers         int     `mapstructure:"workers"`
	Precision       int     `mapstructure:"precision"`
	Output          string  `mapstructure:"output"`
	OutputFile      string  `mapstructure:"output-file"`
	Width           int     `mapstructure:"width"`
	CacheBackend    string  `mapstructure:"cache-backend"`
	CacheDBConnect  string  `mapstructure:"cache-db-connect"`
	RunsBackend     string  `mapstructure:"runs-backend"`
	RunsDBConnect   string  `mapstructure:"runs-db-connect"`
	Color           string  `mapstructure:"color"`

	// --- Fields from compareCmd.Flags() ---
	SourcesB   string `mapstructure:"sources-b"`
	LanguagesB string `mapstructure:"languages-b"`
	StartB     string `mapstructure:"start-b"`
	EndB       string `mapstructure:"end-b"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Sources != nil {
		clone.Sources = make([]string, len(c.Sources))
		copy(clone.Sources, c.Sources)
	}
	if c.Languages != nil {
		clone.Languages = make([]string, len(c.Languages))
		copy(clone.Languages, c.Languages)
	}
	if c.SourcesB != nil {
		clone.SourcesB = make([]string, len(c.SourcesB))
		copy(clone.SourcesB, c.SourcesB)
	}
	if c.LanguagesB != nil {
		clone.LanguagesB = make([]string, len(c.LanguagesB))
		copy(clone.LanguagesB, c.LanguagesB)
	}
	return &clone
}

// Params returns the detection parameters embedded in the config.
func (c *Config) Params() schema.DetectionParams {
	return schema.DetectionParams{
		Granularity: c.Granularity,
		Sensitivity: c.Sensitivity,
		Window:      c.Window,
	}
}

// Filter returns the observation filter for the primary slice.
func (c *Config) Filter() ObservationFilter {
	return ObservationFilter{
		Sources:   c.Sources,
		Languages: c.Languages,
		Start:     c.StartTime,
		End:       c.EndTime,
	}
}

// FilterB returns the observation filter for the comparison slice.
func (c *Config) FilterB() ObservationFilter {
	return ObservationFilter{
		Sources:   c.SourcesB,
		Languages: c.LanguagesB,
		Start:     c.StartTimeB,
		End:       c.EndTimeB,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDetectionParams(cfg, input); err != nil {
		return err
	}
	if err := processSliceFilters(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-slice related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	return nil
}

// processDetectionParams validates the algorithm tuning knobs. Range checks
// live on schema.DetectionParams so every entry point rejects the same way.
func processDetectionParams(cfg *Config, input *ConfigRawInput) error {
	granularity, err := schema.ParseGranularity(input.Granularity)
	if err != nil {
		return err
	}
	cfg.Granularity = granularity
	cfg.Sensitivity = input.Sensitivity
	cfg.Window = input.Window

	return cfg.Params().Validate()
}

// processSliceFilters handles the source/language/date filters for the
// primary slice and, when any -b flag is set, the comparison slice.
func processSliceFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.Sources = SplitList(input.Sources)
	cfg.Languages = SplitList(input.Languages)

	var err error
	if cfg.StartTime, err = parseDateInput(input.Start, "start"); err != nil {
		return err
	}
	if cfg.EndTime, err = parseDateInput(input.End, "end"); err != nil {
		return err
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)",
			cfg.StartTime.Format(DateFormat), cfg.EndTime.Format(DateFormat))
	}

	cfg.CompareMode = input.SourcesB != "" || input.LanguagesB != "" ||
		input.StartB != "" || input.EndB != ""
	if !cfg.CompareMode {
		return nil
	}

	cfg.SourcesB = SplitList(input.SourcesB)
	cfg.LanguagesB = SplitList(input.LanguagesB)
	if cfg.StartTimeB, err = parseDateInput(input.StartB, "start-b"); err != nil {
		return err
	}
	if cfg.EndTimeB, err = parseDateInput(input.EndB, "end-b"); err != nil {
		return err
	}
	if !cfg.StartTimeB.IsZero() && !cfg.EndTimeB.IsZero() && cfg.StartTimeB.After(cfg.EndTimeB) {
		return fmt.Errorf("start-b date (%s) cannot be after end-b date (%s)",
			cfg.StartTimeB.Format(DateFormat), cfg.EndTimeB.Format(DateFormat))
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.DuckDBBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates corpus, cache and runs backend settings.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CorpusBackend = schema.DatabaseBackend(strings.ToLower(input.CorpusBackend))
	if _, ok := schema.ValidCorpusBackends[cfg.CorpusBackend]; !ok {
		return fmt.Errorf("invalid corpus backend '%s'. must be sqlite, mysql, postgresql, duckdb", input.CorpusBackend)
	}
	cfg.CorpusDBConnect = input.CorpusDBConnect
	if cfg.CorpusBackend == schema.SQLiteBackend || cfg.CorpusBackend == schema.DuckDBBackend {
		if cfg.CorpusDBConnect == "" {
			return fmt.Errorf("corpus-db-connect must point at a database file for %s", cfg.CorpusBackend)
		}
	}
	if err := ValidateDatabaseConnectionString(cfg.CorpusBackend, cfg.CorpusDBConnect); err != nil {
		return err
	}

	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidStoreBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend != "" {
		if _, ok := schema.ValidStoreBackends[cfg.RunsBackend]; !ok {
			return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
		}
		cfg.RunsDBConnect = input.RunsDBConnect
		if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			return err
		}

		// Cache and runs stores must not share a SQLite file, since both
		// apply their own migrations to it.
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
			cachePath := cfg.CacheDBConnect
			if cachePath == "" {
				cachePath = GetCacheDBFilePath()
			}
			runsPath := cfg.RunsDBConnect
			if runsPath == "" {
				runsPath = GetRunsDBFilePath()
			}
			if cachePath == runsPath {
				return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
			}
		}
	}

	return nil
}

// SplitList splits a comma-separated flag value into trimmed, non-empty parts.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// Regular expression to capture "N [units] ago",
// e.g. "2 years ago", "3 months ago", "1 week ago".
var relativeDateRe = regexp.MustCompile(`^(\d+)\s+(year|quarter|month|week|day)s?\s+ago$`)

// ParseRelativeDate converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeDateRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative date format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "quarter":
		return now.AddDate(0, -3*value, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	default: // day
		return now.AddDate(0, 0, -value), nil
	}
}

// parseDateInput parses a flag value that is either an absolute date
// ("2024-03-01"), an RFC3339 timestamp, or a relative phrase ("6 months ago").
// An empty value means no bound and parses to the zero time.
func parseDateInput(s, flagName string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := ParseRelativeDate(s, time.Now().UTC()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s date '%s'. Expected YYYY-MM-DD, RFC3339 or 'N [units] ago'", flagName, s)
}

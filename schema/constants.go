package schema

// Custom string types for type safety.
type (
	// Granularity represents the calendar bucket size for timeline aggregation.
	Granularity string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents a SQL backend for the corpus, cache or run stores.
	DatabaseBackend string
)

// All granularities supported.
const (
	DayGranularity     Granularity = "day"
	WeekGranularity    Granularity = "week"
	MonthGranularity   Granularity = "month" // default
	QuarterGranularity Granularity = "quarter"
	YearGranularity    Granularity = "year"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	DuckDBBackend     DatabaseBackend = "duckdb"
	NoneBackend       DatabaseBackend = "none"
)

// Detection parameter bounds. Sensitivity must sit in (0, MaxSensitivity];
// an explicit window must be at least MinWindow buckets.
const (
	DefaultSensitivity = 1.0
	MaxSensitivity     = 10.0
	MinWindow          = 3
)

// AllGranularities returns a list of all supported granularities.
var AllGranularities = []Granularity{
	DayGranularity, WeekGranularity, MonthGranularity, QuarterGranularity, YearGranularity,
}

// ValidGranularities lists all valid granularities.
var ValidGranularities = map[Granularity]struct{}{
	DayGranularity:     {},
	WeekGranularity:    {},
	MonthGranularity:   {},
	QuarterGranularity: {},
	YearGranularity:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCorpusBackends lists the backends the corpus store can read from.
// DuckDB is supported for local analytical snapshots of the warehouse.
var ValidCorpusBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	DuckDBBackend:     {},
}

// ValidStoreBackends lists the backends the cache and run stores can write to.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

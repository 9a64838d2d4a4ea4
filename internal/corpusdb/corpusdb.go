// Package corpusdb reads classified corpus data from SQL backends.
package corpusdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	_ "modernc.org/sqlite"              // SQLite driver
)

// StoreImpl reads observations from a relational corpus using various
// database backends.
type StoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ObservationStore = &StoreImpl{} // Compile-time check

// NewStore initializes and returns a new ObservationStore based on the backend type.
func NewStore(backend schema.DatabaseBackend, connStr string) (contract.ObservationStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		db, err = sql.Open("sqlite", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite corpus at %q: %w", connStr, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.DuckDBBackend:
		db, err = sql.Open("duckdb", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open DuckDB corpus at %q: %w", connStr, err)
		}

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL corpus: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL corpus: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported corpus backend: %s. Must be sqlite, mysql, postgresql, or duckdb", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s corpus. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &StoreImpl{db: db, backend: backend}, nil
}

// observationQuery is the base join from classifications back to records.
// Only relevant, classified, dated chunks contribute to the timeline.
const observationQuery = `
	SELECT r.publication_date, cc.hltp
	FROM chunk_classifications cc
	JOIN chunks c ON cc.chunk_id = c.id
	JOIN records r ON c.record_id = r.id
	WHERE cc.is_relevant
	AND cc.hltp IS NOT NULL AND cc.hltp <> ''
	AND r.publication_date IS NOT NULL`

// FetchObservations returns one observation per relevant classified chunk
// matching the filter. Taxonomy paths are reduced to their top-level
// category here so the rest of the pipeline never sees full HLTP strings.
func (s *StoreImpl) FetchObservations(ctx context.Context, filter contract.ObservationFilter) ([]schema.Observation, error) {
	query, args := s.buildObservationQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var observations []schema.Observation
	for rows.Next() {
		var rawDate any
		var hltp string
		if err := rows.Scan(&rawDate, &hltp); err != nil {
			return nil, fmt.Errorf("failed to scan observation row: %w", err)
		}
		ts, err := parseDBTime(rawDate)
		if err != nil {
			return nil, err
		}
		observations = append(observations, schema.Observation{
			Timestamp: ts,
			Category:  schema.TopLevelCategory(hltp),
			Weight:    1,
		})
	}
	return observations, rows.Err()
}

// buildObservationQuery appends filter predicates with backend-appropriate
// placeholders to the base join.
func (s *StoreImpl) buildObservationQuery(filter contract.ObservationFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(observationQuery)

	var args []any
	appendArg := func(v any) string {
		args = append(args, v)
		if s.backend == schema.PostgreSQLBackend {
			return fmt.Sprintf("$%d", len(args))
		}
		return "?"
	}

	if len(filter.Sources) > 0 {
		placeholders := make([]string, len(filter.Sources))
		for i, src := range filter.Sources {
			placeholders[i] = appendArg(src)
		}
		sb.WriteString(fmt.Sprintf(" AND r.source IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(filter.Languages) > 0 {
		placeholders := make([]string, len(filter.Languages))
		for i, lang := range filter.Languages {
			placeholders[i] = appendArg(lang)
		}
		sb.WriteString(fmt.Sprintf(" AND r.language IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.Start.IsZero() {
		sb.WriteString(fmt.Sprintf(" AND r.publication_date >= %s", appendArg(filter.Start.UTC().Format(dbTimeFormat))))
	}
	if !filter.End.IsZero() {
		sb.WriteString(fmt.Sprintf(" AND r.publication_date <= %s", appendArg(filter.End.UTC().Format(dbTimeFormat))))
	}

	return sb.String(), args
}

// FetchSources returns every distinct source with its record count,
// ordered by count descending.
func (s *StoreImpl) FetchSources(ctx context.Context) ([]schema.SourceInfo, error) {
	query := `
		SELECT source, COUNT(*)
		FROM records
		WHERE source IS NOT NULL AND source <> ''
		GROUP BY source
		ORDER BY COUNT(*) DESC, source ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []schema.SourceInfo
	for rows.Next() {
		var info schema.SourceInfo
		if err := rows.Scan(&info.Name, &info.Records); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, info)
	}
	return sources, rows.Err()
}

// FetchLanguages returns the distinct language codes present, sorted.
func (s *StoreImpl) FetchLanguages(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT language
		FROM records
		WHERE language IS NOT NULL AND language <> ''
		ORDER BY language ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var languages []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("failed to scan language row: %w", err)
		}
		languages = append(languages, lang)
	}
	return languages, rows.Err()
}

// FetchDateRange returns the earliest and latest publication dates in the corpus.
// An empty corpus yields two zero times, not an error.
func (s *StoreImpl) FetchDateRange(ctx context.Context) (time.Time, time.Time, error) {
	query := `SELECT MIN(publication_date), MAX(publication_date) FROM records WHERE publication_date IS NOT NULL`

	var rawMin, rawMax any
	if err := s.db.QueryRowContext(ctx, query).Scan(&rawMin, &rawMax); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to query date range: %w", err)
	}
	if rawMin == nil || rawMax == nil {
		return time.Time{}, time.Time{}, nil
	}

	minDate, err := parseDBTime(rawMin)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	maxDate, err := parseDBTime(rawMax)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return minDate, maxDate, nil
}

// Close closes the underlying DB connection.
func (s *StoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// dbTimeFormat is the canonical timestamp representation for text-typed
// date columns.
const dbTimeFormat = "2006-01-02 15:04:05"

// parseDBTime normalizes the timestamp representations the supported drivers
// hand back: native time.Time, text, or raw bytes.
func parseDBTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{dbTimeFormat, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}

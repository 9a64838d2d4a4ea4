package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
)

// runsTable is the name of the table for detection run tracking.
const runsTable = "burstline_runs"

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{db: nil, backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported runs backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}

	if _, err := db.Exec(getCreateRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// getCreateRunsQuery returns the CREATE TABLE query for burstline_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				started_at DATETIME(6) NOT NULL,
				finished_at DATETIME(6),
				duration_ms BIGINT,
				categories INT,
				bursts INT,
				params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				started_at TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ,
				duration_ms BIGINT,
				categories INT,
				bursts INT,
				params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				started_at TEXT NOT NULL,
				finished_at TEXT,
				duration_ms INTEGER,
				categories INTEGER,
				bursts INTEGER,
				params TEXT
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new detection run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, params map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (started_at, params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(paramsJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (started_at, params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(paramsJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert detection run: %w", err)
	}
	return runID, nil
}

// FinishRun updates the detection run with completion data.
func (rs *RunStoreImpl) FinishRun(runID int64, endTime time.Time, categories, bursts int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	startTime, err := rs.fetchStartTime(runID)
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	var args []any
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET finished_at = $1, duration_ms = $2, categories = $3, bursts = $4 WHERE run_id = $5`, quotedTableName)
		args = []any{endTime, durationMs, categories, bursts, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET finished_at = ?, duration_ms = ?, categories = ?, bursts = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, categories, bursts, runID}
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update detection run: %w", err)
	}
	return nil
}

// fetchStartTime reads back the start of a run, handling the per-backend
// time storage formats.
func (rs *RunStoreImpl) fetchStartTime(runID int64) (time.Time, error) {
	quotedTableName := quoteTableName(runsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT started_at FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT started_at FROM %s WHERE run_id = ?`, quotedTableName)
	}
	row := rs.db.QueryRow(query, runID)

	if rs.backend == schema.SQLiteBackend {
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return time.Time{}, fmt.Errorf("failed to get started_at for run %d: %w", runID, err)
		}
		startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse started_at: %w", err)
		}
		return startTime, nil
	}

	var startTime time.Time
	if err := row.Scan(&startTime); err != nil {
		return time.Time{}, fmt.Errorf("failed to get started_at for run %d: %w", runID, err)
	}
	return startTime, nil
}

// GetAllRuns retrieves all detection runs from the store, newest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf("SELECT run_id, started_at, finished_at, duration_ms, categories, bursts, params FROM %s ORDER BY run_id DESC", quotedTableName)

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var durationMs, categories, bursts sql.NullInt64

		if rs.backend == schema.SQLiteBackend {
			var startedStr string
			var finishedStr sql.NullString
			if err := rows.Scan(&record.RunID, &startedStr, &finishedStr, &durationMs, &categories, &bursts, &record.Params); err != nil {
				return nil, fmt.Errorf("failed to scan detection run: %w", err)
			}
			if record.StartedAt, err = time.Parse(time.RFC3339Nano, startedStr); err != nil {
				return nil, fmt.Errorf("failed to parse started_at: %w", err)
			}
			if finishedStr.Valid {
				finished, err := time.Parse(time.RFC3339Nano, finishedStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse finished_at: %w", err)
				}
				record.FinishedAt = &finished
			}
		} else {
			var finished sql.NullTime
			if err := rows.Scan(&record.RunID, &record.StartedAt, &finished, &durationMs, &categories, &bursts, &record.Params); err != nil {
				return nil, fmt.Errorf("failed to scan detection run: %w", err)
			}
			if finished.Valid {
				record.FinishedAt = &finished.Time
			}
		}

		if durationMs.Valid {
			record.DurationMs = &durationMs.Int64
		}
		record.Categories = int(categories.Int64)
		record.Bursts = int(bursts.Int64)
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   rs.backend,
		Connected: rs.db != nil,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := rs.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	oldest, err := rs.runStartAt("ASC")
	if err != nil {
		return status, err
	}
	newest, err := rs.runStartAt("DESC")
	if err != nil {
		return status, err
	}
	status.OldestEntry = &oldest
	status.NewestEntry = &newest

	return status, nil
}

// runStartAt reads the start time of the first run in the given order.
func (rs *RunStoreImpl) runStartAt(order string) (time.Time, error) {
	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf("SELECT started_at FROM %s ORDER BY run_id %s LIMIT 1", quotedTableName, order)
	row := rs.db.QueryRow(query)

	if rs.backend == schema.SQLiteBackend {
		var startedStr string
		if err := row.Scan(&startedStr); err != nil {
			return time.Time{}, fmt.Errorf("failed to get run start time: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse run start time: %w", err)
		}
		return started, nil
	}

	var started time.Time
	if err := row.Scan(&started); err != nil {
		return time.Time{}, fmt.Errorf("failed to get run start time: %w", err)
	}
	return started, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate representation for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

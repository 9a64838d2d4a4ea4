package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/burstline/burstline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStores(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		tmpDir := t.TempDir()
		cachePath := filepath.Join(tmpDir, "cache.db")
		runsPath := filepath.Join(tmpDir, "runs.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, runsPath)
		assert.NoError(t, err, "Failed to initialize stores")

		assert.NotNil(t, Manager, "Manager should not be nil")
		assert.NotNil(t, Manager.GetTimelineStore(), "Timeline store should not be nil")
		assert.NotNil(t, Manager.GetRunStore(), "Run store should not be nil")

		CloseStores()

		_, err = os.Stat(cachePath)
		assert.False(t, os.IsNotExist(err), "Cache database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}

		// Multiple initializations should be safe (sync.Once)
		err1 := InitStores(schema.SQLiteBackend, ":memory:", "", "")
		err2 := InitStores(schema.SQLiteBackend, ":memory:", "", "")
		err3 := InitStores(schema.SQLiteBackend, ":memory:", "", "")

		assert.NoError(t, err1, "First init should not fail")
		assert.NoError(t, err2, "Second init should not fail")
		assert.NoError(t, err3, "Third init should not fail")

		// Multiple closes should be safe (sync.Once)
		CloseStores()
		CloseStores()
		CloseStores()
	})

	t.Run("disabled stores", func(t *testing.T) {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}

		// Empty backends disable both stores entirely
		err := InitStores("", "", "", "")
		assert.NoError(t, err, "InitStores with empty backends should not error")

		assert.Nil(t, Manager.GetTimelineStore(), "Timeline store should be nil when disabled")
		assert.Nil(t, Manager.GetRunStore(), "Run store should be nil when disabled")

		CloseStores()
	})

	t.Run("invalid runs backend closes timeline store", func(t *testing.T) {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		defer func() {
			initOnce = sync.Once{}
			closeOnce = sync.Once{}
		}()

		err := InitStores(schema.SQLiteBackend, ":memory:", "unsupported", "")
		assert.Error(t, err, "Expected error for unsupported runs backend")
	})
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err, "Failed to create none backend store")

	// Get returns error (no data)
	_, _, _, err = store.Get("test_key")
	assert.Equal(t, sql.ErrNoRows, err, "Expected ErrNoRows from Get on none backend")

	// Set is no-op
	err = store.Set("test_key", []byte("test_value"), 1, 123456789)
	assert.NoError(t, err, "Set should not error on none backend")

	// Get still errors after Set (no-op)
	_, _, _, err = store.Get("test_key")
	assert.Error(t, err, "Expected error from Get after Set on none backend")

	// Clear is no-op
	assert.NoError(t, store.Clear(), "Clear should not error on none backend")

	status, err := store.GetStatus()
	assert.NoError(t, err, "GetStatus should not error on none backend")
	assert.Equal(t, schema.NoneBackend, status.Backend)
	assert.False(t, status.Connected, "None backend should not report connected")

	assert.NoError(t, store.Close(), "Close should not error on none backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{name: "valid simple name", tableName: "test_table", wantErr: false},
		{name: "valid name with numbers", tableName: "test_table_123", wantErr: false},
		{name: "valid name starting with underscore", tableName: "_test_table", wantErr: false},
		{name: "valid uppercase name", tableName: "TEST_TABLE", wantErr: false},
		{name: "empty name", tableName: "", wantErr: true},
		{name: "starts with number", tableName: "123_table", wantErr: true},
		{name: "contains dash", tableName: "test-table", wantErr: true},
		{name: "contains space", tableName: "test table", wantErr: true},
		{name: "sql injection attempt", tableName: "test'; DROP TABLE users; --", wantErr: true},
		{name: "contains dot", tableName: "test.table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err, "validateTableName should error for %q", tt.tableName)
			} else {
				assert.NoError(t, err, "validateTableName should not error for %q", tt.tableName)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		backend   schema.DatabaseBackend
		want      string
	}{
		{
			name:      "SQLite backend",
			tableName: "test_table",
			backend:   schema.SQLiteBackend,
			want:      `"test_table"`,
		},
		{
			name:      "MySQL backend",
			tableName: "test_table",
			backend:   schema.MySQLBackend,
			want:      "`test_table`",
		},
		{
			name:      "PostgreSQL backend",
			tableName: "test_table",
			backend:   schema.PostgreSQLBackend,
			want:      `"test_table"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteTableName(tt.tableName, tt.backend)
			assert.Equal(t, tt.want, got, "quoteTableName(%q, %q)", tt.tableName, tt.backend)
		})
	}
}

func TestSQLiteCacheOperations(t *testing.T) {
	t.Run("set and get operations", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		testKey := "test_key"
		testValue := []byte("test_value_data")
		testVersion := 1
		testTimestamp := int64(1234567890)

		err = store.Set(testKey, testValue, testVersion, testTimestamp)
		assert.NoError(t, err, "Set should not fail")

		value, version, timestamp, err := store.Get(testKey)
		assert.NoError(t, err, "Get should not fail")

		assert.Equal(t, string(testValue), string(value), "Get value mismatch")
		assert.Equal(t, testVersion, version, "Get version mismatch")
		assert.Equal(t, testTimestamp, timestamp, "Get timestamp mismatch")
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		testKey := "upsert_key"
		err = store.Set(testKey, []byte("initial_value"), 1, 1000)
		assert.NoError(t, err, "Initial Set should not fail")

		err = store.Set(testKey, []byte("updated_value"), 2, 2000)
		assert.NoError(t, err, "Update Set should not fail")

		value, version, timestamp, err := store.Get(testKey)
		assert.NoError(t, err, "Get after update should not fail")

		assert.Equal(t, "updated_value", string(value), "After upsert, value mismatch")
		assert.Equal(t, 2, version, "After upsert, version mismatch")
		assert.Equal(t, int64(2000), timestamp, "After upsert, timestamp mismatch")
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("non_existent_key")
		assert.Equal(t, sql.ErrNoRows, err, "Get non-existent key should return sql.ErrNoRows")
	})

	t.Run("clear removes all entries", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		keys := []string{"key1", "key2", "key3"}
		for i, key := range keys {
			err := store.Set(key, []byte("value"+key), i+1, int64(1000+i))
			assert.NoError(t, err, "Set %s should not fail", key)
		}

		err = store.Clear()
		assert.NoError(t, err, "Clear should not fail")

		for _, key := range keys {
			_, _, _, err := store.Get(key)
			assert.Equal(t, sql.ErrNoRows, err, "Get %s after Clear should return sql.ErrNoRows", key)
		}

		// Table survives the clear, so Set still works
		err = store.Set("key1", []byte("again"), 1, 5000)
		assert.NoError(t, err, "Set after Clear should not fail")
	})
}

func TestGetPlaceholder(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		want    string
	}{
		{name: "SQLite backend", backend: schema.SQLiteBackend, want: "?"},
		{name: "MySQL backend", backend: schema.MySQLBackend, want: "?"},
		{name: "PostgreSQL backend", backend: schema.PostgreSQLBackend, want: "$1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend}
			assert.Equal(t, tt.want, store.getPlaceholder(), "getPlaceholder()")
		})
	}
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		name         string
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{
			name:    "SQLite backend",
			backend: schema.SQLiteBackend,
			wantContains: []string{
				"INSERT OR REPLACE",
				`"test_table"`,
			},
		},
		{
			name:    "MySQL backend",
			backend: schema.MySQLBackend,
			wantContains: []string{
				"INSERT INTO",
				"ON DUPLICATE KEY UPDATE",
				"`test_table`",
			},
		},
		{
			name:    "PostgreSQL backend",
			backend: schema.PostgreSQLBackend,
			wantContains: []string{
				"INSERT INTO",
				"ON CONFLICT",
				"DO UPDATE SET",
				`"test_table"`,
				"$1", "$2", "$3", "$4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &CacheStoreImpl{backend: tt.backend, tableName: "test_table"}
			got := store.getUpsertQuery()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getUpsertQuery() should contain %q", want)
			}
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		name         string
		backend      schema.DatabaseBackend
		wantContains []string
	}{
		{
			name:    "SQLite backend",
			backend: schema.SQLiteBackend,
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				`"test_table"`,
				"cache_key TEXT PRIMARY KEY",
				"cache_value BLOB",
				"cache_version INTEGER",
				"cache_timestamp INTEGER",
			},
		},
		{
			name:    "MySQL backend",
			backend: schema.MySQLBackend,
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				"`test_table`",
				"cache_key VARCHAR(255) PRIMARY KEY",
				"cache_value BLOB",
				"cache_version INT",
				"cache_timestamp BIGINT",
			},
		},
		{
			name:    "PostgreSQL backend",
			backend: schema.PostgreSQLBackend,
			wantContains: []string{
				"CREATE TABLE IF NOT EXISTS",
				`"test_table"`,
				"cache_key TEXT PRIMARY KEY",
				"cache_value BYTEA",
				"cache_version INTEGER",
				"cache_timestamp BIGINT",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getCreateTableQuery("test_table", tt.backend)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want, "getCreateTableQuery() should contain %q", want)
			}
		})
	}
}

func TestNewCacheStoreErrors(t *testing.T) {
	t.Run("invalid table name", func(t *testing.T) {
		_, err := NewCacheStore("invalid-name", schema.SQLiteBackend, "")
		assert.Error(t, err, "Expected error for invalid table name")
	})

	t.Run("empty table name", func(t *testing.T) {
		_, err := NewCacheStore("", schema.SQLiteBackend, "")
		assert.Error(t, err, "Expected error for empty table name")
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := NewCacheStore("test_table", "unsupported", "")
		assert.Error(t, err, "Expected error for unsupported backend")
	})
}

func TestClearCache(t *testing.T) {
	t.Run("SQLite backend", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test_clear.db")

		db, err := sql.Open("sqlite", dbPath)
		require.NoError(t, err, "Failed to create database")
		defer func() { _ = db.Close() }()

		_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
		require.NoError(t, err, "Failed to create table")

		_, err = os.Stat(dbPath)
		assert.False(t, os.IsNotExist(err), "Database file should exist before ClearCache")

		err = ClearCache(schema.SQLiteBackend, dbPath, "")
		assert.NoError(t, err, "ClearCache should not fail")

		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err), "Database file should be removed after ClearCache")
	})

	t.Run("SQLite backend - non-existent file", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "non_existent.db")
		err := ClearCache(schema.SQLiteBackend, dbPath, "")
		assert.NoError(t, err, "ClearCache on non-existent file should not error")
	})

	t.Run("NoneBackend", func(t *testing.T) {
		err := ClearCache(schema.NoneBackend, "", "")
		assert.NoError(t, err, "ClearCache with NoneBackend should not error")
	})

	t.Run("empty dbFilePath for SQLite", func(t *testing.T) {
		err := ClearCache(schema.SQLiteBackend, "", "")
		assert.Error(t, err, "Expected error for empty dbFilePath with SQLite backend")
	})

	t.Run("unsupported backend", func(t *testing.T) {
		err := ClearCache("unsupported", "", "")
		assert.Error(t, err, "Expected error for unsupported backend")
	})
}

func TestClearRuns(t *testing.T) {
	t.Run("SQLite backend", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test_runs_clear.db")

		db, err := sql.Open("sqlite", dbPath)
		require.NoError(t, err, "Failed to create database")
		defer func() { _ = db.Close() }()

		_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
		require.NoError(t, err, "Failed to create table")

		err = ClearRuns(schema.SQLiteBackend, dbPath, "")
		assert.NoError(t, err, "ClearRuns should not fail")

		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err), "Database file should be removed after ClearRuns")
	})

	t.Run("NoneBackend", func(t *testing.T) {
		err := ClearRuns(schema.NoneBackend, "", "")
		assert.NoError(t, err, "ClearRuns with NoneBackend should not error")
	})

	t.Run("unsupported backend", func(t *testing.T) {
		err := ClearRuns("unsupported", "", "")
		assert.Error(t, err, "Expected error for unsupported backend")
	})
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		testData := []struct {
			key   string
			value []byte
			ts    int64
		}{
			{"key1", []byte("value1"), 1000},
			{"key2", []byte("value2"), 2000},
			{"key3", []byte("value3"), 1500},
		}

		for _, data := range testData {
			err := store.Set(data.key, data.value, 1, data.ts)
			assert.NoError(t, err, "Set should not fail")
		}

		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")

		assert.Equal(t, schema.SQLiteBackend, status.Backend, "Backend should be sqlite")
		assert.True(t, status.Connected, "Should be connected")
		assert.Equal(t, 3, status.TotalEntries, "Total entries should be 3")
		require.NotNil(t, status.OldestEntry, "Oldest entry should be set")
		require.NotNil(t, status.NewestEntry, "Newest entry should be set")
		assert.Equal(t, time.Unix(1000, 0).UTC(), *status.OldestEntry, "Oldest entry time should be 1000")
		assert.Equal(t, time.Unix(2000, 0).UTC(), *status.NewestEntry, "Newest entry time should be 2000")
	})

	t.Run("SQLite backend empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err, "Failed to create SQLite store")
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		assert.NoError(t, err, "GetStatus should not fail")

		assert.Equal(t, schema.SQLiteBackend, status.Backend, "Backend should be sqlite")
		assert.True(t, status.Connected, "Should be connected")
		assert.Equal(t, 0, status.TotalEntries, "Total entries should be 0")
		assert.Nil(t, status.OldestEntry, "Oldest entry should be nil")
		assert.Nil(t, status.NewestEntry, "Newest entry should be nil")
	})
}

func TestCacheStoreCloseNilDB(t *testing.T) {
	store := &CacheStoreImpl{
		db:        nil,
		tableName: "test",
		backend:   schema.NoneBackend,
	}

	err := store.Close()
	assert.NoError(t, err, "Close on nil db should not error")
}

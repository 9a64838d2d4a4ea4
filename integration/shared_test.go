//go:build basic || database

package integration

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/burstline/burstline/internal/corpusdb"
	"github.com/burstline/burstline/schema"
)

var (
	// sharedBurstlinePath holds the path to a shared burstline binary built once for all tests.
	sharedBurstlinePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBurstlineBinary returns the path to the burstline binary, building it once if needed.
func getBurstlineBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "burstline-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		burstlinePath := filepath.Join(tempDir, "burstline")
		buildCmd := exec.Command("go", "build", "-o", burstlinePath, "./cmd/burstline")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build burstline: %v", err))
		}

		sharedBurstlinePath = burstlinePath
	})

	return sharedBurstlinePath
}

// seedCorpus creates a SQLite corpus fixture with enough classified chunks to
// drive a detection run, and returns the database file path. The fixture holds
// twelve months of one-per-week background activity for a single category plus
// a burst month with a large spike.
func seedCorpus(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "corpus.db")
	err := corpusdb.Migrate(schema.SQLiteBackend, dbPath, -1)
	if err != nil {
		t.Fatalf("failed to migrate corpus fixture: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open corpus fixture: %v", err)
	}
	defer func() { _ = db.Close() }()

	nextID := int64(1)
	insert := func(source, language, hltp string, published time.Time) {
		id := nextID
		nextID++
		_, err := db.Exec(
			"INSERT INTO records (id, source, language, publication_date) VALUES (?, ?, ?, ?)",
			id, source, language, published.UTC().Format("2006-01-02 15:04:05"))
		if err != nil {
			t.Fatalf("failed to insert record: %v", err)
		}
		_, err = db.Exec(
			"INSERT INTO chunks (id, record_id, chunk_index, content) VALUES (?, ?, 0, 'fixture chunk')",
			id, id)
		if err != nil {
			t.Fatalf("failed to insert chunk: %v", err)
		}
		_, err = db.Exec(
			"INSERT INTO chunk_classifications (id, chunk_id, hltp, is_relevant) VALUES (?, ?, ?, ?)",
			id, id, hltp, true)
		if err != nil {
			t.Fatalf("failed to insert classification: %v", err)
		}
	}

	// Baseline: one observation per week across 2023.
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for week := 0; week < 48; week++ {
		insert("telegram", "uk", "Military Activity > Shelling", start.AddDate(0, 0, week*7))
	}

	// Burst: a dense cluster in June 2023.
	burst := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		insert("news", "en", "Military Activity > Shelling", burst.AddDate(0, 0, i%20))
	}

	return dbPath
}

// runBurstlineCommand runs the burstline binary with the given args and
// returns its combined output.
func runBurstlineCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	burstlinePath := getBurstlineBinary()
	cmd := exec.Command(burstlinePath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}

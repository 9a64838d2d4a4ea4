package schema

import "time"

// SourceInfo describes a corpus source and how many records it contributed.
type SourceInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// SourceCatalog is the result of a sources listing: all distinct sources plus
// the publication date range the corpus spans.
type SourceCatalog struct {
	Sources   []SourceInfo `json:"sources"`
	Languages []string     `json:"languages"`
	MinDate   time.Time    `json:"min_date"`
	MaxDate   time.Time    `json:"max_date"`
}

// RunRecord is a persisted detection run: when it ran, with what parameters,
// and what it found. Used by the runs store and parquet export.
type RunRecord struct {
	RunID      int64      `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs *int64     `json:"duration_ms,omitempty"`
	Categories int        `json:"categories"`
	Bursts     int        `json:"bursts"`
	Params     string     `json:"params"` // JSON-encoded DetectionParams + filters
}

// StoreStatus describes the health and size of a cache or run store.
type StoreStatus struct {
	Backend      DatabaseBackend `json:"backend"`
	Connected    bool            `json:"connected"`
	TotalEntries int             `json:"total_entries"`
	OldestEntry  *time.Time      `json:"oldest_entry,omitempty"`
	NewestEntry  *time.Time      `json:"newest_entry,omitempty"`
}

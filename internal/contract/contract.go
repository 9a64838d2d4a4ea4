// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/burstline/burstline/schema"
)

// ObservationFilter narrows which corpus rows feed the timeline. Zero-valued
// fields mean "no restriction".
type ObservationFilter struct {
	Sources   []string
	Languages []string
	Start     time.Time
	End       time.Time
}

// ObservationStore defines the read operations against a classified corpus.
// This allows the analysis logic to be tested without a real database.
type ObservationStore interface {
	// FetchObservations returns one observation per relevant classified
	// chunk matching the filter, with the taxonomy path already reduced
	// to its top-level category.
	FetchObservations(ctx context.Context, filter ObservationFilter) ([]schema.Observation, error)

	// FetchSources returns every distinct source with its record count.
	FetchSources(ctx context.Context) ([]schema.SourceInfo, error)

	// FetchLanguages returns the distinct language codes present.
	FetchLanguages(ctx context.Context) ([]string, error)

	// FetchDateRange returns the earliest and latest publication dates.
	FetchDateRange(ctx context.Context) (time.Time, time.Time, error)

	// Close closes the underlying connection.
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetTimelineStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Clear() error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// RunStore defines the interface for tracking detection runs.
type RunStore interface {
	// BeginRun creates a new detection run and returns its unique ID
	BeginRun(startTime time.Time, params map[string]any) (int64, error)

	// FinishRun updates the run with completion data
	FinishRun(runID int64, endTime time.Time, categories, bursts int) error

	// GetAllRuns returns every recorded run, newest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

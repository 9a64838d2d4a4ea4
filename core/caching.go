package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/burstline/burstline/core/agg"
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
)

// currentCacheVersion defines the version of the cached series encoding.
// Bump it whenever the aggregation semantics or SeriesPoint shape change.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached timeline stays valid. The corpus grows by
// ingestion batches, so week-old aggregates are considered stale.
const cacheTTL = 7 * 24 * time.Hour

// cachedFetchSeries returns the aggregated timeline for the given filter,
// serving it from the timeline cache when a fresh entry exists.
func cachedFetchSeries(ctx context.Context, cfg *contract.Config, store contract.ObservationStore, mgr contract.CacheManager, filter contract.ObservationFilter) ([]schema.SeriesPoint, error) {
	var timeline contract.CacheStore
	if mgr != nil {
		timeline = mgr.GetTimelineStore()
	}
	if timeline == nil {
		// Fallback to direct computation
		return fetchSeries(ctx, cfg, store, filter)
	}

	key := generateCacheKey(cfg, filter)

	if series := checkCacheHit(timeline, key); series != nil {
		return series, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, store, filter, timeline, key)
}

// fetchSeries reads the matching observations and aggregates them into
// per-category bucket counts.
func fetchSeries(ctx context.Context, cfg *contract.Config, store contract.ObservationStore, filter contract.ObservationFilter) ([]schema.SeriesPoint, error) {
	observations, err := store.FetchObservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}
	return agg.Aggregate(observations, cfg.Granularity), nil
}

// checkCacheHit attempts to retrieve and validate a cached series.
func checkCacheHit(timeline contract.CacheStore, key string) []schema.SeriesPoint {
	data, version, ts, err := timeline.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheTTL {
			var series []schema.SeriesPoint
			if err := json.Unmarshal(data, &series); err == nil {
				return series // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore computes the series and stores it in the cache.
func computeAndStore(ctx context.Context, cfg *contract.Config, store contract.ObservationStore, filter contract.ObservationFilter, timeline contract.CacheStore, key string) ([]schema.SeriesPoint, error) {
	series, err := fetchSeries(ctx, cfg, store, filter)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(series); err == nil {
		_ = timeline.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return series, nil
}

// generateCacheKey creates a unique key from everything that affects the
// aggregated series: the corpus connection, the filter, and the granularity.
func generateCacheKey(cfg *contract.Config, filter contract.ObservationFilter) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%d:%d:%s",
		cfg.CorpusBackend,
		cfg.CorpusDBConnect,
		strings.Join(filter.Sources, ","),
		strings.Join(filter.Languages, ","),
		filter.Start.Unix(),
		filter.End.Unix(),
		cfg.Granularity,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

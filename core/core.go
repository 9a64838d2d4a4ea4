// Package core has core logic for burst detection, ranking and summarization.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/burstline/burstline/core/algo"
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/internal/corpusdb"
	"github.com/burstline/burstline/internal/iocache"
	"github.com/burstline/burstline/internal/outwriter"
	"github.com/burstline/burstline/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ErrCompareNeedsSlice is returned when compare runs without any -b filter.
var ErrCompareNeedsSlice = errors.New("compare requires at least one of --sources-b, --languages-b, --start-b, --end-b")

// GetBurstResults runs burst detection over the corpus timeline and returns
// the flagged buckets ranked by intensity, capped at the configured result
// limit. Shared by the CLI and the MCP server.
func GetBurstResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.DetectionResult, error) {
	store, err := corpusdb.NewStore(cfg.CorpusBackend, cfg.CorpusDBConnect)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	result, err := runDetection(ctx, cfg, store, mgr)
	if err != nil {
		return nil, err
	}
	result.Points = limitResults(algo.Rank(result.Points), cfg.ResultLimit)
	return result, nil
}

// GetEpisodeResults runs burst detection and returns the contiguous episodes
// ranked by intensity, capped at the configured result limit.
func GetEpisodeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.DetectionResult, error) {
	store, err := corpusdb.NewStore(cfg.CorpusBackend, cfg.CorpusDBConnect)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	result, err := runDetection(ctx, cfg, store, mgr)
	if err != nil {
		return nil, err
	}
	result.Episodes = limitResults(algo.RankEpisodes(result.Episodes), cfg.ResultLimit)
	return result, nil
}

// GetTimelineResults aggregates the corpus into per-category bucket counts
// without running detection.
func GetTimelineResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.SeriesPoint, error) {
	store, err := corpusdb.NewStore(cfg.CorpusBackend, cfg.CorpusDBConnect)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return cachedFetchSeries(ctx, cfg, store, mgr, cfg.Filter())
}

// GetCompareResults aggregates two filtered slices of the corpus and returns
// the per-category deltas between them.
func GetCompareResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ComparisonResult, error) {
	if !cfg.CompareMode {
		return schema.ComparisonResult{}, ErrCompareNeedsSlice
	}

	store, err := corpusdb.NewStore(cfg.CorpusBackend, cfg.CorpusDBConnect)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	defer func() { _ = store.Close() }()

	seriesA, err := cachedFetchSeries(ctx, cfg, store, mgr, cfg.Filter())
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	seriesB, err := cachedFetchSeries(ctx, cfg, store, mgr, cfg.FilterB())
	if err != nil {
		return schema.ComparisonResult{}, err
	}

	return compareSlices(seriesA, seriesB, cfg.ResultLimit), nil
}

// GetSourceCatalogResults lists the distinct corpus sources with record
// counts, the languages present, and the publication date range.
func GetSourceCatalogResults(ctx context.Context, cfg *contract.Config) (schema.SourceCatalog, error) {
	store, err := corpusdb.NewStore(cfg.CorpusBackend, cfg.CorpusDBConnect)
	if err != nil {
		return schema.SourceCatalog{}, err
	}
	defer func() { _ = store.Close() }()

	return fetchSourceCatalog(ctx, store)
}

// ExecuteDetect runs burst detection and prints the flagged buckets ranked by
// intensity. It serves as the main entry point for the 'detect' command.
func ExecuteDetect(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := GetBurstResults(ctx, cfg, iocache.Manager)
	if err != nil {
		return err
	}
	return outwriter.PrintBurstResults(result, cfg, time.Since(start))
}

// ExecuteEpisodes runs burst detection, merges the flagged buckets into
// contiguous episodes, and prints them ranked by intensity with aggregate
// statistics. Main entry point for the 'episodes' command.
func ExecuteEpisodes(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := GetEpisodeResults(ctx, cfg, iocache.Manager)
	if err != nil {
		return err
	}
	return outwriter.PrintEpisodeResults(result, cfg, time.Since(start))
}

// ExecuteTimeline aggregates the corpus into per-category bucket counts and
// prints them. Main entry point for the 'timeline' command.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	series, err := GetTimelineResults(ctx, cfg, iocache.Manager)
	if err != nil {
		return err
	}
	return outwriter.PrintTimelineResults(series, cfg, time.Since(start))
}

// ExecuteCompare aggregates two filtered slices of the corpus and prints the
// per-category deltas between them. Main entry point for the 'compare' command.
func ExecuteCompare(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := GetCompareResults(ctx, cfg, iocache.Manager)
	if err != nil {
		return err
	}
	return outwriter.PrintComparisonResults(result, cfg, time.Since(start))
}

// ExecuteSources lists the distinct corpus sources and prints them. Main
// entry point for the 'sources' command.
func ExecuteSources(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	catalog, err := GetSourceCatalogResults(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.PrintSourceCatalog(catalog, cfg, time.Since(start))
}

// fetchSourceCatalog gathers the source listing, languages and date range.
func fetchSourceCatalog(ctx context.Context, store contract.ObservationStore) (schema.SourceCatalog, error) {
	sources, err := store.FetchSources(ctx)
	if err != nil {
		return schema.SourceCatalog{}, err
	}
	languages, err := store.FetchLanguages(ctx)
	if err != nil {
		return schema.SourceCatalog{}, err
	}
	minDate, maxDate, err := store.FetchDateRange(ctx)
	if err != nil {
		return schema.SourceCatalog{}, err
	}
	return schema.SourceCatalog{
		Sources:   sources,
		Languages: languages,
		MinDate:   minDate,
		MaxDate:   maxDate,
	}, nil
}

// limitResults truncates a ranked slice to the top 'limit' entries. If limit
// is zero or exceeds the slice length, the slice is returned unchanged.
func limitResults[T any](results []T, limit int) []T {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

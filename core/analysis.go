package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/burstline/burstline/core/agg"
	"github.com/burstline/burstline/core/algo"
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
)

// runDetection performs the common fetch, aggregate and detect steps shared by
// the detect and episodes entry points, with optional run tracking.
func runDetection(ctx context.Context, cfg *contract.Config, store contract.ObservationStore, mgr contract.CacheManager) (*schema.DetectionResult, error) {
	params := cfg.Params()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// --- 0. Begin run tracking (if configured) ---
	var runID int64
	var runStore contract.RunStore
	if mgr != nil {
		runStore = mgr.GetRunStore()
	}
	if runStore != nil {
		runParams := map[string]any{
			"granularity": string(params.Granularity),
			"sensitivity": params.Sensitivity,
			"window":      params.Window,
			"sources":     cfg.Sources,
			"languages":   cfg.Languages,
		}
		var err error
		runID, err = runStore.BeginRun(time.Now(), runParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Fetch and aggregate (with caching) ---
	series, err := cachedFetchSeries(ctx, cfg, store, mgr, cfg.Filter())
	if err != nil {
		return nil, err
	}

	// --- 2. Per-category detection on the worker pool ---
	output, err := detectAll(series, params, cfg.Workers)
	if err != nil {
		return nil, err
	}
	for _, category := range output.Skipped {
		contract.LogInfo("Skipping category %q: fewer than %d buckets", category, schema.MinWindow)
	}

	// --- 3. Episode grouping and summary ---
	episodes := algo.GroupEpisodes(output.Points, params.Granularity)
	result := &schema.DetectionResult{
		Params:     params,
		Points:     output.Points,
		Episodes:   episodes,
		Summary:    algo.Summarize(episodes),
		Categories: len(agg.Categories(series)) - len(output.Skipped),
		Skipped:    output.Skipped,
	}

	// --- 4. End run tracking ---
	if runStore != nil && runID > 0 {
		if err := runStore.FinishRun(runID, time.Now(), result.Categories, len(result.Points)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return result, nil
}

// detectAll fans the per-category detection out to cfg.Workers goroutines and
// merges their outputs back into a deterministic order. Parameters are
// validated once up front so no worker ever starts on invalid input.
func detectAll(series []schema.SeriesPoint, params schema.DetectionParams, workers int) (*algo.Output, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	byCategory := agg.SplitByCategory(series)
	categories := agg.Categories(series)

	catCh := make(chan string, len(categories))
	outCh := make(chan *algo.Output, len(categories))
	errCh := make(chan error, len(categories))
	var wg sync.WaitGroup

	for range max(1, workers) {
		wg.Go(func() {
			for category := range catCh {
				out, err := algo.Detect(byCategory[category], params)
				if err != nil {
					errCh <- fmt.Errorf("detection failed for category %q: %w", category, err)
					continue
				}
				outCh <- out
			}
		})
	}

	for _, category := range categories {
		catCh <- category
	}
	close(catCh)

	wg.Wait()
	close(outCh)
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, err
	}

	merged := &algo.Output{}
	for out := range outCh {
		merged.Points = append(merged.Points, out.Points...)
		merged.Skipped = append(merged.Skipped, out.Skipped...)
	}

	// Workers finish in arbitrary order; restore category-then-period order
	// so identical inputs always yield identical output.
	sort.Slice(merged.Points, func(i, j int) bool {
		if merged.Points[i].Category != merged.Points[j].Category {
			return merged.Points[i].Category < merged.Points[j].Category
		}
		return merged.Points[i].Period.Before(merged.Points[j].Period)
	})
	sort.Strings(merged.Skipped)

	return merged, nil
}

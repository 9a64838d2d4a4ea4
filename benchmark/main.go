// Package main provides a performance benchmarking tool for the Burstline CLI.
// It measures execution times across corpus snapshots of different sizes and
// command types, running each test multiple times, treating the first
// successful run as cold and averaging the rest as warm, generating CSV
// output for performance analysis and documentation.
//
// Prerequisites:
// - burstline binary installed and available in PATH
// - Corpus snapshot databases placed in the specified base directory
// - SQLite snapshots: corpus-small.db, corpus-medium.db, corpus-large.db
//
// Usage: go run benchmark/main.go [corpus-base-dir]
//
//	corpus-base-dir: Directory containing corpus snapshot databases
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Corpus      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CorpusBase    string
	Timeout       time.Duration
	Workers       int
	NoCacheRuns   int
	CacheRuns     int
	TestCorpora   []string
	Granularities map[string]string
	CompareSplits map[string][2]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [corpus-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	corpusBase := os.Args[1]

	config := BenchmarkConfig{
		CorpusBase:  corpusBase,
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestCorpora: []string{"corpus-small.db", "corpus-medium.db", "corpus-large.db"},
		Granularities: map[string]string{
			"corpus-small.db":  "week",
			"corpus-medium.db": "week",
			"corpus-large.db":  "day",
		},
		CompareSplits: map[string][2]string{
			"corpus-small.db":  {"telegram", "news"},
			"corpus-medium.db": {"telegram", "news"},
			"corpus-large.db":  {"telegram", "news"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using burstline cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("burstline", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that burstline binary and corpus snapshots exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if burstline is available
	if _, err := exec.LookPath("burstline"); err != nil {
		return fmt.Errorf("burstline binary not found in PATH")
	}

	// Check if corpus snapshots exist
	for _, corpus := range config.TestCorpora {
		corpusPath := filepath.Join(config.CorpusBase, corpus)
		if _, err := os.Stat(corpusPath); os.IsNotExist(err) {
			return fmt.Errorf("corpus snapshot %s not found at %s", corpus, corpusPath)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured corpus snapshots
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestCorpora), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, corpus := range config.TestCorpora {
		fmt.Printf("Benchmarking %s\n", corpus)

		corpusPath := filepath.Join(config.CorpusBase, corpus)
		granularity := config.Granularities[corpus]

		// Burst detection
		args := fmt.Sprintf("--granularity %s", granularity)
		desc := fmt.Sprintf("burst detection (%s buckets)", granularity)
		result := runBenchmarkSuite(config, corpus, corpusPath, "detect", desc, args)
		results = append(results, result)

		// Timeline aggregation
		desc = fmt.Sprintf("timeline aggregation (%s buckets)", granularity)
		result = runBenchmarkSuite(config, corpus, corpusPath, "timeline", desc, args)
		results = append(results, result)

		// Compare analysis
		split, hasSplit := config.CompareSplits[corpus]
		if hasSplit {
			args = fmt.Sprintf("--sources %s --sources-b %s", split[0], split[1])
			desc = fmt.Sprintf("compare analysis (%s vs %s)", split[0], split[1])
			result = runBenchmarkSuite(config, corpus, corpusPath, "compare", desc, args)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, corpus, corpusPath, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, corpus)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, corpusPath, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Corpus:      corpus,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a burstline command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, corpusPath, command, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{
		command,
		"--corpus-backend", "sqlite",
		"--corpus-db-connect", corpusPath,
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprintf("%d", config.Workers),
	}
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("burstline", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	var completionPhrase string
	switch command {
	case "timeline":
		completionPhrase = "Timeline aggregation completed in"
	case "compare":
		completionPhrase = "Comparison completed in"
	default:
		completionPhrase = "Detection completed in"
	}

	return strings.Contains(outputStr, completionPhrase) &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/burstline_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"corpus", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Corpus, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "detect", "Burst Detection:")
	printCommandSummary(results, "timeline", "Timeline Aggregation:")
	printCommandSummary(results, "compare", "Compare Analysis:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-16s: No-cache: %s, Cold: %s, Warm: %s\n", result.Corpus, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}

// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/burstline/burstline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Burstline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Burstline Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: detect_bursts ---
	s.AddTool(mcp.NewTool("detect_bursts",
		mcp.WithDescription("Detect bursts of activity in the corpus timeline, ranked by intensity."),
		mcp.WithString("granularity", mcp.Description("Calendar bucket size (day, week, month, quarter, year). Defaults to 'month'."), mcp.Enum("day", "week", "month", "quarter", "year")),
		mcp.WithNumber("sensitivity", mcp.Description("Detection sensitivity in (0, 10]. Higher flags more points. Defaults to 1.0.")),
		mcp.WithNumber("window", mcp.Description("Rolling window size in buckets (minimum 3). Zero selects the automatic default.")),
		mcp.WithString("sources", mcp.Description("Comma-separated list of sources to include.")),
		mcp.WithString("languages", mcp.Description("Comma-separated list of languages to include.")),
		mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleDetectBursts)

	// --- 2. Tool: get_burst_episodes ---
	s.AddTool(mcp.NewTool("get_burst_episodes",
		mcp.WithDescription("Detect bursts and merge them into contiguous episodes with aggregate statistics."),
		mcp.WithString("granularity", mcp.Description("Calendar bucket size (day, week, month, quarter, year)."), mcp.Enum("day", "week", "month", "quarter", "year")),
		mcp.WithNumber("sensitivity", mcp.Description("Detection sensitivity in (0, 10].")),
		mcp.WithNumber("window", mcp.Description("Rolling window size in buckets (minimum 3).")),
		mcp.WithString("sources", mcp.Description("Comma-separated list of sources to include.")),
		mcp.WithString("languages", mcp.Description("Comma-separated list of languages to include.")),
		mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetBurstEpisodes)

	// --- 3. Tool: get_timeline ---
	s.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Aggregate the corpus into per-category bucket counts without running detection."),
		mcp.WithString("granularity", mcp.Description("Calendar bucket size (day, week, month, quarter, year)."), mcp.Enum("day", "week", "month", "quarter", "year")),
		mcp.WithString("sources", mcp.Description("Comma-separated list of sources to include.")),
		mcp.WithString("languages", mcp.Description("Comma-separated list of languages to include.")),
		mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD).")),
	), h.handleGetTimeline)

	// --- 4. Tool: compare_slices ---
	s.AddTool(mcp.NewTool("compare_slices",
		mcp.WithDescription("Compare per-category activity between two filtered slices of the corpus."),
		mcp.WithString("sources", mcp.Description("Comma-separated sources for the first slice.")),
		mcp.WithString("languages", mcp.Description("Comma-separated languages for the first slice.")),
		mcp.WithString("start", mcp.Description("Start date for the first slice (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("End date for the first slice (YYYY-MM-DD).")),
		mcp.WithString("sources_b", mcp.Description("Comma-separated sources for the second slice.")),
		mcp.WithString("languages_b", mcp.Description("Comma-separated languages for the second slice.")),
		mcp.WithString("start_b", mcp.Description("Start date for the second slice (YYYY-MM-DD).")),
		mcp.WithString("end_b", mcp.Description("End date for the second slice (YYYY-MM-DD).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of categories returned.")),
	), h.handleCompareSlices)

	// --- 5. Tool: list_sources ---
	s.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the distinct corpus sources with record counts, languages and date range."),
	), h.handleListSources)

	return s
}

// StartMCPServer starts the Burstline MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

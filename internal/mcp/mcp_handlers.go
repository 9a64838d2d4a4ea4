package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/burstline/burstline/core"
	"github.com/burstline/burstline/internal/contract"
	"github.com/burstline/burstline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyFilterArgs copies the primary slice filter arguments onto the config.
func applyFilterArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if s := request.GetString("sources", ""); s != "" {
		cfg.Sources = contract.SplitList(s)
	}
	if s := request.GetString("languages", ""); s != "" {
		cfg.Languages = contract.SplitList(s)
	}
	if s := request.GetString("start", ""); s != "" {
		t, err := time.Parse(contract.DateFormat, s)
		if err != nil {
			return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", s)
		}
		cfg.StartTime = t.UTC()
	}
	if s := request.GetString("end", ""); s != "" {
		t, err := time.Parse(contract.DateFormat, s)
		if err != nil {
			return fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", s)
		}
		cfg.EndTime = t.UTC()
	}
	return nil
}

// applyDetectionArgs copies the tuning knobs onto the config and revalidates
// them, since MCP arguments bypass the CLI flag validation.
func applyDetectionArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if g := request.GetString("granularity", ""); g != "" {
		granularity, err := schema.ParseGranularity(g)
		if err != nil {
			return err
		}
		cfg.Granularity = granularity
	}
	if v := request.GetFloat("sensitivity", 0); v > 0 {
		cfg.Sensitivity = v
	}
	if w := request.GetInt("window", 0); w > 0 {
		cfg.Window = w
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	return cfg.Params().Validate()
}

func (h *toolHandler) handleDetectBursts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilterArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	if err := applyDetectionArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid detection parameters: %v", err)), nil
	}

	result, err := core.GetBurstResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetBurstEpisodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilterArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	if err := applyDetectionArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid detection parameters: %v", err)), nil
	}

	result, err := core.GetEpisodeResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilterArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	if g := request.GetString("granularity", ""); g != "" {
		granularity, err := schema.ParseGranularity(g)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid granularity: %v", err)), nil
		}
		cfg.Granularity = granularity
	}

	series, err := core.GetTimelineResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("timeline aggregation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(series, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareSlices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilterArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	sourcesB := request.GetString("sources_b", "")
	languagesB := request.GetString("languages_b", "")
	startB := request.GetString("start_b", "")
	endB := request.GetString("end_b", "")
	cfg.CompareMode = sourcesB != "" || languagesB != "" || startB != "" || endB != ""

	cfg.SourcesB = contract.SplitList(sourcesB)
	cfg.LanguagesB = contract.SplitList(languagesB)
	if startB != "" {
		t, err := time.Parse(contract.DateFormat, startB)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start_b date %q (expected YYYY-MM-DD)", startB)), nil
		}
		cfg.StartTimeB = t.UTC()
	}
	if endB != "" {
		t, err := time.Parse(contract.DateFormat, endB)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end_b date %q (expected YYYY-MM-DD)", endB)), nil
		}
		cfg.EndTimeB = t.UTC()
	}

	result, err := core.GetCompareResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()

	catalog, err := core.GetSourceCatalogResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("source listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(catalog, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/measuresoftgram/msgram/core"
	"github.com/measuresoftgram/msgram/core/algo"
	"github.com/measuresoftgram/msgram/internal/contract"
	"github.com/measuresoftgram/msgram/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
}

// measuresResponse is the payload of calculate_measures.
type measuresResponse struct {
	Report                 schema.EnrichedQualityReport `json:"report"`
	WeakestMeasures        []schema.MeasureResult       `json:"weakest_measures,omitempty"`
	WeakestCharacteristics []schema.QualityScore        `json:"weakest_characteristics,omitempty"`
}

func (h *toolHandler) handleCalculateMeasures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	path := request.GetString("input_path", "")
	if path == "" {
		return mcp.NewToolResultError("input_path is required"), nil
	}
	if err := contract.RevalidateMeasures(cfg, request.GetString("measures", ""), request.GetString("complexity_mode", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid measure parameters: %v", err)), nil
	}
	cfg.Inputs = []string{path}

	report, err := core.GetMeasureResults(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	resp := measuresResponse{Report: schema.EnrichReport(report)}
	if n := request.GetInt("weakest", 0); n > 0 {
		resp.WeakestMeasures = algo.RankMeasures(slices.Clone(report.Measures), n)
		resp.WeakestCharacteristics = algo.RankScores(slices.Clone(report.Characteristics), n)
	}
	return jsonResult(resp), nil
}

func (h *toolHandler) handleCheckQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	path := request.GetString("input_path", "")
	if path == "" {
		return mcp.NewToolResultError("input_path is required"), nil
	}
	if err := contract.RevalidateMinScores(cfg, request.GetString("min_scores", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}
	cfg.Inputs = []string{path}

	report, err := core.GetMeasureResults(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(core.CheckReports(cfg, []*schema.QualityReport{report})), nil
}

func (h *toolHandler) handleListMeasures(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(core.BuildDefinitions(h.baseCfg)), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/measuresoftgram/msgram/internal/contract"
)

// NewMCPServer initializes and configures the msgram MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"MeasureSoftGram Quality Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("calculate_measures",
		mcp.WithDescription("Compute quality measures, subcharacteristics and characteristics from a metric table."),
		mcp.WithString("input_path", mcp.Description("Path to the metric table (json, csv, yaml or parquet)."), mcp.Required()),
		mcp.WithString("measures", mcp.Description("Comma-separated measure keys. Defaults to every measure the table supports.")),
		mcp.WithString("complexity_mode", mcp.Description("How file complexity is interpreted."), mcp.Enum("density", "median")),
		mcp.WithNumber("weakest", mcp.Description("Also list this many lowest measures and characteristics.")),
	), h.handleCalculateMeasures)

	s.AddTool(mcp.NewTool("check_quality",
		mcp.WithDescription("Gate a metric table against minimum scores and report every violation."),
		mcp.WithString("input_path", mcp.Description("Path to the metric table."), mcp.Required()),
		mcp.WithString("min_scores", mcp.Description("Comma-separated key:minimum pairs, e.g. 'reliability:0.7,test_coverage:0.5'."), mcp.Required()),
	), h.handleCheckQuality)

	s.AddTool(mcp.NewTool("list_measures",
		mcp.WithDescription("List every measure with its metrics, thresholds and place in the quality model."),
	), h.handleListMeasures)

	return s
}

// StartMCPServer starts the msgram MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, client, mgr)
	return server.ServeStdio(s)
}

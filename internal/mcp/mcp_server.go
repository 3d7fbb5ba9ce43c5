// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the tschart MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, sources map[string]contract.DataSource) *server.MCPServer {
	s := server.NewMCPServer(
		"tschart Evaluation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		sources: sources,
	}

	// --- 1. Tool: evaluate_chart ---
	s.AddTool(mcp.NewTool("evaluate_chart",
		mcp.WithDescription("Evaluate a chart definition (JSON or YAML) into series data against the configured data sources."),
		mcp.WithString("chart", mcp.Description("The chart document with chartDefinition and timeResolutionSpecs."), mcp.Required()),
		mcp.WithString("resolution", mcp.Description("Time resolution to evaluate (e.g. '300', '5m'). Defaults to the smallest one of the chart.")),
		mcp.WithString("last_point", mcp.Description("Timestamp of the last point of the window (RFC3339, unix seconds or '2 hours ago').")),
		mcp.WithBoolean("live", mcp.Description("Evaluate the live window ending now.")),
	), h.handleEvaluateChart)

	// --- 2. Tool: evaluate_series_function ---
	s.AddTool(mcp.NewTool("evaluate_series_function",
		mcp.WithDescription("Evaluate a single series function spec such as loadSeries or timeDerivative."),
		mcp.WithString("spec", mcp.Description("The function spec document (JSON or YAML)."), mcp.Required()),
		mcp.WithString("resolution", mcp.Description("Time resolution of the window."), mcp.Required()),
		mcp.WithNumber("points", mcp.Description("Number of points in the window."), mcp.Required()),
		mcp.WithString("last_point", mcp.Description("Timestamp of the last point of the window.")),
	), h.handleEvaluateSeriesFunction)

	// --- 3. Tool: reconcile_series ---
	s.AddTool(mcp.NewTool("reconcile_series",
		mcp.WithDescription("Align several point arrays onto one shared timeline, filling gaps with fake points."),
		mcp.WithString("series", mcp.Description("JSON array of point arrays."), mcp.Required()),
		mcp.WithNumber("resolution", mcp.Description("Spacing of the timeline in seconds. Inferred when omitted.")),
	), h.handleReconcileSeries)

	// --- 4. Tool: validate_chart ---
	s.AddTool(mcp.NewTool("validate_chart",
		mcp.WithDescription("Report unknown function names in a chart definition."),
		mcp.WithString("chart", mcp.Description("The chart document (JSON or YAML)."), mcp.Required()),
	), h.handleValidateChart)

	return s
}

// StartMCPServer starts the tschart MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, sources map[string]contract.DataSource) error {
	s := NewMCPServer(baseCfg, sources)
	return server.ServeStdio(s)
}

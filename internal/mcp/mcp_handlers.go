package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/tschart/core"
	"github.com/huangsam/tschart/core/algo"
	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	sources map[string]contract.DataSource
}

// seriesFunctionResponse wraps a single result with the id of the request.
type seriesFunctionResponse struct {
	RequestID string        `json:"requestId"`
	Result    schema.Result `json:"result"`
}

// validationResponse lists the problems found in a chart.
type validationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// now returns the configured evaluation time.
func (h *toolHandler) now() time.Time {
	if h.baseCfg.NowTimestamp > 0 {
		return time.Unix(h.baseCfg.NowTimestamp, 0)
	}
	return time.Now()
}

// applyWindow parses the window arguments shared by the evaluation tools.
func (h *toolHandler) applyWindow(cfg *contract.Config, request mcp.CallToolRequest) error {
	if r := request.GetString("resolution", ""); r != "" {
		resolution, err := contract.ParseResolution(r)
		if err != nil {
			return err
		}
		cfg.TimeResolution = resolution
	}
	cfg.Live = request.GetBool("live", cfg.Live)
	if lp := request.GetString("last_point", ""); lp != "" {
		if cfg.Live {
			return fmt.Errorf("last_point cannot be combined with live")
		}
		now := h.now()
		t, err := contract.ParseTimestamp(lp, now)
		if err != nil {
			return fmt.Errorf("invalid last_point: %w", err)
		}
		if t.After(now) {
			return fmt.Errorf("last point (%s) cannot be after now", t.Format(contract.DateTimeFormat))
		}
		cfg.LastPointTimestamp = schema.Int64(t.Unix())
	}
	return nil
}

func (h *toolHandler) handleEvaluateChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := h.applyWindow(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}

	file, err := schema.ParseChartFile([]byte(request.GetString("chart", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cfg.Strict {
		if err := file.ChartDefinition.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("chart validation failed: %v", err)), nil
		}
	}

	chart := core.NewChart(file, h.sources, core.WithClock(h.now))
	state, err := chart.State(ctx, cfg.ViewParameters())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(state, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleEvaluateSeriesFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := h.applyWindow(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid window parameters: %v", err)), nil
	}
	points := request.GetInt("points", 0)
	if points < 1 {
		return mcp.NewToolResultError("points must be at least 1"), nil
	}
	if cfg.TimeResolution <= 0 {
		return mcp.NewToolResultError("resolution is required"), nil
	}

	spec, err := schema.ParseSpecDocument([]byte(request.GetString("spec", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := schema.ValidateSpec(spec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("spec validation failed: %v", err)), nil
	}

	engine := core.NewEngine()
	ec := engine.NewContext(
		core.WithPointsCount(points),
		core.WithTimeResolution(cfg.TimeResolution),
		core.WithLastPointTimestamp(cfg.LastPointTimestamp),
		core.WithNowTimestamp(h.now().Unix()),
		core.WithDataSources(h.sources),
	)
	result, err := engine.EvaluateSeriesFunction(ctx, ec, spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(seriesFunctionResponse{RequestID: uuid.NewString(), Result: result}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleReconcileSeries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var series [][]schema.Point
	if err := json.Unmarshal([]byte(request.GetString("series", "")), &series); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}
	resolution := int64(request.GetInt("resolution", 0))
	if resolution < 0 {
		return mcp.NewToolResultError("resolution must not be negative"), nil
	}

	jsonData, _ := json.MarshalIndent(algo.ReconcileTiming(series, resolution), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleValidateChart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := schema.ParseChartFile([]byte(request.GetString("chart", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := validationResponse{Valid: true, Errors: []string{}}
	if err := file.ChartDefinition.Validate(); err != nil {
		resp.Valid = false
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				resp.Errors = append(resp.Errors, e.Error())
			}
		} else {
			resp.Errors = append(resp.Errors, err.Error())
		}
	}
	if len(file.TimeResolutionSpecs) == 0 {
		resp.Valid = false
		resp.Errors = append(resp.Errors, core.ErrNoTimeResolutions.Error())
	}

	jsonData, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

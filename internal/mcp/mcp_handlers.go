package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg     *contract.Config
	mgr         contract.CacheManager
	newProvider providerFactory
}

// jsonResult wraps a value as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// prepare clones the base config, applies the filter arguments and builds a provider.
// A non-nil result is a tool error to return as is.
func (h *toolHandler) prepare(request mcp.CallToolRequest) (*contract.Config, contract.DataProvider, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateFilters(cfg,
		request.GetString("segment", ""),
		request.GetString("priority", ""),
		request.GetString("as_of", ""),
	)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}

	p, err := h.newProvider(cfg, h.mgr)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("provider unavailable: %v", err))
	}
	return cfg, p, nil
}

func (h *toolHandler) handleGetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, p, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := core.GetDashboardResults(core.WithSuppressHeader(ctx), cfg, p, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetInsights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, p, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := core.GetDashboardResults(core.WithSuppressHeader(ctx), cfg, p, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("insights failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichInsights(core.FilterInsights(result.Insights, cfg.Priority)))
}

func (h *toolHandler) handleGetSegments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, p, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}

	counts, source, err := core.GetSegmentCounts(ctx, cfg, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("segment counts failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"source": source, "counts": counts})
}

func (h *toolHandler) handleGetFunnel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, p, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}

	journey, err := p.FetchJourney(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("funnel failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"funnel":                 core.ComputeFunnel(journey.Funnel),
		"avg_time_to_completion": journey.AvgTimeToCompletion,
	})
}

func (h *toolHandler) handleGetLearners(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, p, errResult := h.prepare(request)
	if errResult != nil {
		return errResult, nil
	}
	cfg.AllPages = false
	cfg.Search = request.GetString("search", "")
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.Limit = l
	}
	if o := request.GetInt("offset", -1); o >= 0 {
		cfg.Offset = o
	}

	learners, total, err := core.GetLearners(ctx, cfg, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("learner listing failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"total": total, "learners": learners})
}

func (h *toolHandler) handleClassifyLearner(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateFilters(cfg, "", "", request.GetString("as_of", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	status := request.GetString("learner_status", "")
	if status == "" {
		return mcp.NewToolResultError("learner_status is required"), nil
	}

	level := schema.DataQualityLevel(strings.ToLower(request.GetString("data_quality_level", "")))
	if _, ok := schema.ValidDataQualityLevels[level]; level != "" && !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid data_quality_level '%s'. must be high, medium, low", level)), nil
	}

	// Same normalization as provider records, so counts are clamped and status is canonical.
	learner := provider.NormalizeLearner(request.GetArguments())
	return jsonResult(schema.ClassifiedLearner{
		LearnerRecord: learner,
		Segments:      core.NewClassifier(cfg).Classify(learner),
	})
}

func (h *toolHandler) handleComputeROI(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := schema.ROIInput{
		CertRate:         request.GetFloat("cert_rate", 0),
		PassRate:         request.GetFloat("pass_rate", 0),
		CopilotAdoption:  request.GetFloat("copilot_adoption", 0),
		ActionsAdoption:  request.GetFloat("actions_adoption", 0),
		SecurityAdoption: request.GetFloat("security_adoption", 0),
		RawUsageIncrease: request.GetFloat("usage_increase", 0),
	}
	return jsonResult(core.ComputeROI(in, core.EffectiveWeights(h.baseCfg)))
}

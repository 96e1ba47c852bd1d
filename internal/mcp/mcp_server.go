// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
)

// providerFactory builds the data provider for one tool call.
type providerFactory func(cfg *contract.Config, mgr contract.CacheManager) (contract.DataProvider, error)

var segmentEnum = mcp.Enum("all", "at_risk", "rising_star", "ready_to_advance", "inactive", "high_value")

// NewMCPServer initializes and configures the SkillPulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newMCPServer(baseCfg, mgr, core.NewDataProvider)
}

func newMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, newProvider providerFactory) *server.MCPServer {
	s := server.NewMCPServer(
		"SkillPulse Analytics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:     baseCfg,
		mgr:         mgr,
		newProvider: newProvider,
	}

	// --- 1. Tool: get_summary ---
	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Compute program metrics, the ROI score, insights, the journey funnel and segment counts."),
		mcp.WithString("as_of", mcp.Description("Evaluation date for inactivity (RFC3339 or YYYY-MM-DD). Defaults to now.")),
	), h.handleGetSummary)

	// --- 2. Tool: get_insights ---
	s.AddTool(mcp.NewTool("get_insights",
		mcp.WithDescription("Generate prioritized program insights from the current provider data."),
		mcp.WithString("priority", mcp.Description("Only return insights of this priority."), mcp.Enum("high", "medium", "low", "success")),
	), h.handleGetInsights)

	// --- 3. Tool: get_segments ---
	s.AddTool(mcp.NewTool("get_segments",
		mcp.WithDescription("Count learners in each behavioral segment across the full population."),
		mcp.WithString("as_of", mcp.Description("Evaluation date for inactivity (RFC3339 or YYYY-MM-DD).")),
	), h.handleGetSegments)

	// --- 4. Tool: get_funnel ---
	s.AddTool(mcp.NewTool("get_funnel",
		mcp.WithDescription("Compute journey funnel stage percentages, conversions and the highest drop-off."),
	), h.handleGetFunnel)

	// --- 5. Tool: get_learners ---
	s.AddTool(mcp.NewTool("get_learners",
		mcp.WithDescription("List one page of learners with their segment membership."),
		mcp.WithString("segment", mcp.Description("Only return learners in this segment. Defaults to 'all'."), segmentEnum),
		mcp.WithString("search", mcp.Description("Free-text search on handle or email.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of learners to return.")),
		mcp.WithNumber("offset", mcp.Description("Number of learners to skip.")),
	), h.handleGetLearners)

	// --- 6. Tool: classify_learner ---
	s.AddTool(mcp.NewTool("classify_learner",
		mcp.WithDescription("Classify a single learner record into segments without contacting the provider."),
		mcp.WithString("learner_status", mcp.Description("Journey status, e.g. 'Learning' or 'Certified'."), mcp.Required()),
		mcp.WithNumber("exams_passed", mcp.Description("Number of exams passed.")),
		mcp.WithNumber("total_exams", mcp.Description("Number of exams attempted.")),
		mcp.WithBoolean("uses_copilot", mcp.Description("Whether the learner uses Copilot.")),
		mcp.WithBoolean("uses_actions", mcp.Description("Whether the learner uses Actions.")),
		mcp.WithNumber("copilot_days", mcp.Description("Days of Copilot activity.")),
		mcp.WithString("last_activity", mcp.Description("Last activity date (RFC3339 or YYYY-MM-DD).")),
		mcp.WithString("data_quality_level", mcp.Description("Provider data quality rating."), mcp.Enum("high", "medium", "low")),
		mcp.WithNumber("data_quality_score", mcp.Description("Provider data quality score.")),
		mcp.WithString("as_of", mcp.Description("Evaluation date for inactivity.")),
	), h.handleClassifyLearner)

	// --- 7. Tool: compute_roi ---
	s.AddTool(mcp.NewTool("compute_roi",
		mcp.WithDescription("Score a set of program rates with the configured ROI weights without contacting the provider."),
		mcp.WithNumber("cert_rate", mcp.Description("Certification rate in percent."), mcp.Required()),
		mcp.WithNumber("pass_rate", mcp.Description("Exam pass rate in percent."), mcp.Required()),
		mcp.WithNumber("copilot_adoption", mcp.Description("Copilot adoption in percent.")),
		mcp.WithNumber("actions_adoption", mcp.Description("Actions adoption in percent.")),
		mcp.WithNumber("security_adoption", mcp.Description("Security adoption in percent.")),
		mcp.WithNumber("usage_increase", mcp.Description("Average usage increase in percent; the sign is ignored.")),
	), h.handleComputeROI)

	return s
}

// StartMCPServer starts the SkillPulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

func newMockServerTool(t *testing.T, p contract.DataProvider, name string) func(args map[string]any) *mcp.CallToolResult {
	t.Helper()
	baseCfg := &contract.Config{
		InactiveDays: contract.DefaultInactiveDays,
		Segment:      schema.SegmentAll,
		PageSize:     contract.DefaultPageSize,
		Limit:        25,
	}
	s := newMCPServer(baseCfg, nil, func(*contract.Config, contract.CacheManager) (contract.DataProvider, error) {
		return p, nil
	})
	tool := s.GetTool(name)
	require.NotNil(t, tool)

	return func(args map[string]any) *mcp.CallToolResult {
		res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		})
		require.NoError(t, err)
		return res
	}
}

func textOf(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestHandleGetFunnel(t *testing.T) {
	p := &provider.MockDataProvider{}
	p.On("FetchJourney", mock.Anything).Return(&schema.JourneyResponse{
		Funnel: []schema.FunnelStage{
			{Stage: "Registered", Count: 100},
			{Stage: "Learning", Count: 40},
			{Stage: "Certified", Count: 30},
		},
		AvgTimeToCompletion: 45,
	}, nil)

	res := newMockServerTool(t, p, "get_funnel")(nil)
	require.False(t, res.IsError, textOf(res))

	var got struct {
		Funnel              schema.FunnelResult `json:"funnel"`
		AvgTimeToCompletion float64             `json:"avg_time_to_completion"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(res)), &got))
	require.NotNil(t, got.Funnel.HighestDropOff)
	assert.Equal(t, "Registered", got.Funnel.HighestDropOff.FromStage)
	assert.Equal(t, 45.0, got.AvgTimeToCompletion)
	p.AssertExpectations(t)
}

func TestHandleGetFunnelProviderError(t *testing.T) {
	p := &provider.MockDataProvider{}
	p.On("FetchJourney", mock.Anything).Return(nil, errors.New("boom"))

	res := newMockServerTool(t, p, "get_funnel")(nil)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(res), "funnel failed: boom")
}

func TestHandleGetSegments(t *testing.T) {
	p := &provider.MockDataProvider{}
	p.On("FetchSegmentCounts", mock.Anything).Return(&schema.SegmentCounts{All: 10, AtRisk: 3}, nil)

	res := newMockServerTool(t, p, "get_segments")(nil)
	require.False(t, res.IsError, textOf(res))

	var got struct {
		Source string               `json:"source"`
		Counts schema.SegmentCounts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(res)), &got))
	assert.Equal(t, "provider", got.Source)
	assert.Equal(t, 3, got.Counts.AtRisk)
}

func TestHandleGetLearners(t *testing.T) {
	p := &provider.MockDataProvider{}
	query := schema.LearnerQuery{Limit: 5, Offset: 10, Segment: schema.SegmentAtRisk, Search: "oct"}
	p.On("FetchLearners", mock.Anything, query).Return(&schema.LearnerPage{
		Learners: []schema.LearnerRecord{
			{Handle: "octo", ExamsPassed: 0, TotalExams: 3, LastActivity: "2024-05-01"},
			{Handle: "octocat", ExamsPassed: 1, TotalExams: 1, LastActivity: "2024-05-01"},
		},
		Total: 2,
	}, nil)

	res := newMockServerTool(t, p, "get_learners")(map[string]any{
		"segment": "at_risk",
		"search":  "oct",
		"limit":   5.0,
		"offset":  10.0,
	})
	require.False(t, res.IsError, textOf(res))

	var got struct {
		Total    int                        `json:"total"`
		Learners []schema.ClassifiedLearner `json:"learners"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(res)), &got))
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Learners, 1)
	assert.Equal(t, "octo", got.Learners[0].Handle)
	assert.True(t, got.Learners[0].Segments.Has(schema.SegmentAtRisk))
	p.AssertExpectations(t)
}

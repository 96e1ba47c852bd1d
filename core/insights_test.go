package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/schema"
)

func insightIDs(insights []schema.InsightRecord) []string {
	ids := make([]string, len(insights))
	for i, in := range insights {
		ids[i] = in.ID
	}
	return ids
}

func TestGenerateInsights_Rules(t *testing.T) {
	thresholds := schema.DefaultInsightThresholds()
	tests := []struct {
		name     string
		input    schema.InsightInput
		expected []string
	}{
		{
			name:     "nothing available",
			input:    schema.InsightInput{},
			expected: []string{},
		},
		{
			name:     "low certification rate",
			input:    schema.InsightInput{CertRate: 15, HasCertRate: true},
			expected: []string{schema.InsightCertRateLow},
		},
		{
			name:     "certification rate in the middle band",
			input:    schema.InsightInput{CertRate: 27.4, HasCertRate: true},
			expected: []string{},
		},
		{
			name:     "strong certification rate at threshold",
			input:    schema.InsightInput{CertRate: 40, HasCertRate: true},
			expected: []string{schema.InsightCertRateStrong},
		},
		{
			name:     "low pass rate",
			input:    schema.InsightInput{PassRate: 65, HasPassRate: true},
			expected: []string{schema.InsightPassRateLow},
		},
		{
			name:     "pass rate unavailable",
			input:    schema.InsightInput{PassRate: 0},
			expected: []string{},
		},
		{
			name:     "no-show rate above limit",
			input:    schema.InsightInput{NoShowRate: 15.1, HasNoShowRate: true},
			expected: []string{schema.InsightNoShowHigh},
		},
		{
			name:     "no-show rate at limit",
			input:    schema.InsightInput{NoShowRate: 15, HasNoShowRate: true},
			expected: []string{},
		},
		{
			name:     "low copilot adoption",
			input:    schema.InsightInput{CopilotAdoption: 12, HasCopilotAdoption: true},
			expected: []string{schema.InsightCopilotLow},
		},
		{
			name:     "strong copilot adoption",
			input:    schema.InsightInput{CopilotAdoption: 76, HasCopilotAdoption: true},
			expected: []string{schema.InsightCopilotStrong},
		},
		{
			name:     "copilot adoption unknown",
			input:    schema.InsightInput{CopilotAdoption: 0},
			expected: []string{},
		},
		{
			name: "large funnel drop-off",
			input: schema.InsightInput{HighestDropOff: &schema.StageConversion{
				FromStage: "Learning", ToStage: "Certified", DropOffRate: 72.6,
			}},
			expected: []string{schema.InsightFunnelDropOff},
		},
		{
			name: "moderate funnel drop-off",
			input: schema.InsightInput{HighestDropOff: &schema.StageConversion{
				FromStage: "Learning", ToStage: "Certified", DropOffRate: 50,
			}},
			expected: []string{},
		},
		{
			name:     "slow completion",
			input:    schema.InsightInput{AvgTimeToCompletion: 120},
			expected: []string{schema.InsightCompletionTimeSlow},
		},
		{
			name: "rule order is stable",
			input: schema.InsightInput{
				CertRate: 10, HasCertRate: true,
				PassRate: 50, HasPassRate: true,
				NoShowRate: 30, HasNoShowRate: true,
				CopilotAdoption: 10, HasCopilotAdoption: true,
				HighestDropOff:      &schema.StageConversion{DropOffRate: 90},
				AvgTimeToCompletion: 100,
			},
			expected: []string{
				schema.InsightCertRateLow,
				schema.InsightPassRateLow,
				schema.InsightNoShowHigh,
				schema.InsightCopilotLow,
				schema.InsightFunnelDropOff,
				schema.InsightCompletionTimeSlow,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, insightIDs(GenerateInsights(tt.input, thresholds)))
		})
	}
}

func TestGenerateInsights_Content(t *testing.T) {
	insights := GenerateInsights(schema.InsightInput{
		CertRate:    15.3,
		HasCertRate: true,
		HighestDropOff: &schema.StageConversion{
			FromStage: "Learning", ToStage: "Certified", DropOffRate: 72.6,
		},
	}, schema.DefaultInsightThresholds())
	require.Len(t, insights, 2)

	cert := insights[0]
	assert.Equal(t, "Certification rate needs attention", cert.Title)
	assert.Equal(t, schema.PriorityHigh, cert.Priority)
	assert.Equal(t, "15.3%", cert.Metric)
	assert.Contains(t, cert.Description, "20.0%")

	drop := insights[1]
	assert.Equal(t, "Largest drop-off after Learning", drop.Title)
	assert.Equal(t, schema.PriorityMedium, drop.Priority)
	assert.Equal(t, "72.6%", drop.Metric)
	assert.Contains(t, drop.Action, "Certified")
}

func TestGenerateInsights_CustomThresholds(t *testing.T) {
	in := schema.InsightInput{CertRate: 27.4, HasCertRate: true}

	thresholds := schema.DefaultInsightThresholds()
	thresholds.CertRateLow = 30
	assert.Equal(t, []string{schema.InsightCertRateLow}, insightIDs(GenerateInsights(in, thresholds)))

	thresholds = schema.DefaultInsightThresholds()
	thresholds.CertRateStrong = 25
	assert.Equal(t, []string{schema.InsightCertRateStrong}, insightIDs(GenerateInsights(in, thresholds)))
}

func TestNewInsightInput(t *testing.T) {
	m := schema.ProgramMetrics{
		TotalLearners: 4586, CertRate: 27.39,
		PassRate: 80, HasPassRate: true,
	}
	roi := schema.ROIInput{CopilotAdoption: 76}
	funnel := ComputeFunnel(referenceStages())

	in := NewInsightInput(m, roi, funnel, nil, 45)
	assert.True(t, in.HasCertRate)
	assert.True(t, in.HasPassRate)
	assert.False(t, in.HasNoShowRate)
	assert.False(t, in.HasCopilotAdoption)
	assert.Equal(t, 45.0, in.AvgTimeToCompletion)
	require.NotNil(t, in.HighestDropOff)
	assert.Equal(t, "Learning", in.HighestDropOff.FromStage)

	impact := &schema.ImpactResponse{ProductAdoption: []schema.ProductAdoption{{Name: "Copilot", After: 76}}}
	in = NewInsightInput(m, roi, funnel, impact, 45)
	assert.True(t, in.HasCopilotAdoption)

	in = NewInsightInput(schema.ProgramMetrics{}, roi, schema.FunnelResult{}, nil, 0)
	assert.False(t, in.HasCertRate)
	assert.Nil(t, in.HighestDropOff)
}

func TestFilterInsights(t *testing.T) {
	insights := []schema.InsightRecord{
		{ID: "a", Priority: schema.PriorityHigh},
		{ID: "b", Priority: schema.PriorityMedium},
		{ID: "c", Priority: schema.PriorityHigh},
	}
	assert.Equal(t, insights, FilterInsights(insights, ""))
	assert.Equal(t, []string{"a", "c"}, insightIDs(FilterInsights(insights, schema.PriorityHigh)))
	assert.Empty(t, FilterInsights(insights, schema.PrioritySuccess))
}

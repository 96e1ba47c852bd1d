package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/schema"
)

func TestAggregateMetrics(t *testing.T) {
	tests := []struct {
		name  string
		input schema.AggregateInput
		check func(t *testing.T, m schema.ProgramMetrics)
	}{
		{
			name: "certification rate from totals",
			input: schema.AggregateInput{
				Totals: schema.ProgramTotals{TotalLearners: 4586, CertifiedUsers: 1256},
			},
			check: func(t *testing.T, m schema.ProgramMetrics) {
				assert.InDelta(t, 27.39, m.CertRate, 0.01)
				assert.False(t, m.HasPassRate)
				assert.False(t, m.HasNoShowRate)
			},
		},
		{
			name:  "no learners",
			input: schema.AggregateInput{},
			check: func(t *testing.T, m schema.ProgramMetrics) {
				assert.Equal(t, 0.0, m.CertRate)
				assert.Equal(t, 0.0, m.NoShowRate)
			},
		},
		{
			name: "exam summary present",
			input: schema.AggregateInput{
				Totals:     schema.ProgramTotals{TotalLearners: 100, CertifiedUsers: 30, AvgUsageIncrease: 67},
				Summary:    schema.CertificationSummary{OverallPassRate: 80, TotalExamAttempts: 90, TotalNoShows: 10},
				HasSummary: true,
			},
			check: func(t *testing.T, m schema.ProgramMetrics) {
				assert.Equal(t, 30.0, m.CertRate)
				assert.Equal(t, 80.0, m.PassRate)
				assert.Equal(t, 10.0, m.NoShowRate)
				assert.Equal(t, 67.0, m.UsageIncrease)
				assert.True(t, m.HasPassRate)
				assert.True(t, m.HasNoShowRate)
			},
		},
		{
			name: "summary without scheduled exams",
			input: schema.AggregateInput{
				Totals:     schema.ProgramTotals{TotalLearners: 10},
				HasSummary: true,
			},
			check: func(t *testing.T, m schema.ProgramMetrics) {
				assert.True(t, m.HasPassRate)
				assert.False(t, m.HasNoShowRate)
				assert.Equal(t, 0.0, m.NoShowRate)
			},
		},
		{
			name: "inconsistent totals are not clamped",
			input: schema.AggregateInput{
				Totals: schema.ProgramTotals{TotalLearners: 10, CertifiedUsers: 15},
			},
			check: func(t *testing.T, m schema.ProgramMetrics) {
				assert.Equal(t, 150.0, m.CertRate)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, AggregateMetrics(tt.input))
		})
	}
}

func TestAggregateMetrics_CertRateBounds(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for certified := 0; certified <= total; certified++ {
			m := AggregateMetrics(schema.AggregateInput{
				Totals: schema.ProgramTotals{TotalLearners: total, CertifiedUsers: certified},
			})
			require.GreaterOrEqual(t, m.CertRate, 0.0)
			require.LessOrEqual(t, m.CertRate, 100.0)
		}
	}
}

func TestNewAggregateInput(t *testing.T) {
	assert.Equal(t, schema.AggregateInput{}, NewAggregateInput(nil))

	in := NewAggregateInput(&schema.MetricsResponse{Metrics: schema.ProgramTotals{TotalLearners: 5}})
	assert.Equal(t, 5, in.Totals.TotalLearners)
	assert.False(t, in.HasSummary)

	in = NewAggregateInput(&schema.MetricsResponse{CertificationAnalytics: &schema.CertificationAnalytics{}})
	assert.False(t, in.HasSummary)

	in = NewAggregateInput(&schema.MetricsResponse{
		CertificationAnalytics: &schema.CertificationAnalytics{
			Summary: &schema.CertificationSummary{OverallPassRate: 81.5},
		},
	})
	assert.True(t, in.HasSummary)
	assert.Equal(t, 81.5, in.Summary.OverallPassRate)
}

func TestSummarizeLearners(t *testing.T) {
	learners := []schema.LearnerRecord{
		{Handle: "a", ExamsPassed: 2, TotalExams: 2, UsesCopilot: true, CopilotDays: 40, DataQualityScore: 90},
		{Handle: "b", ExamsPassed: 0, TotalExams: 2, UsesActions: true, CopilotDays: 0, DataQualityScore: 50},
		{Handle: "c", ExamsPassed: 1, TotalExams: 1, UsesCopilot: true, UsesActions: true, CopilotDays: 20, DataQualityScore: 70},
		{Handle: "d"},
	}

	s := SummarizeLearners(learners)
	assert.Equal(t, 4, s.Learners)
	assert.Equal(t, 2, s.CertifiedLearners)
	assert.Equal(t, 3, s.ExamsPassed)
	assert.Equal(t, 5, s.ExamsAttempted)
	assert.Equal(t, 60.0, s.ExamPassRate)
	assert.Equal(t, 2, s.CopilotUsers)
	assert.Equal(t, 2, s.ActionsUsers)
	assert.Equal(t, 50.0, s.CopilotAdoption)
	assert.Equal(t, 50.0, s.ActionsAdoption)
	assert.Equal(t, 15.0, s.AvgCopilotDays)
	assert.Equal(t, 52.5, s.AvgDataQualityScore)
}

func TestSummarizeLearners_Empty(t *testing.T) {
	assert.Equal(t, schema.LearnerSummary{}, SummarizeLearners(nil))
}

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	return &Classifier{Now: func() time.Time { return fixedNow }, InactiveAfterDays: 90}
}

func TestClassifier_IsAtRisk(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		name     string
		learner  schema.LearnerRecord
		expected bool
	}{
		{"two failures", schema.LearnerRecord{TotalExams: 3, ExamsPassed: 1}, true},
		{"never passed after two attempts", schema.LearnerRecord{TotalExams: 2, ExamsPassed: 0}, true},
		{"one failure", schema.LearnerRecord{TotalExams: 1, ExamsPassed: 0}, false},
		{"no attempts", schema.LearnerRecord{TotalExams: 0, ExamsPassed: 0}, false},
		{"low quality with attempt", schema.LearnerRecord{TotalExams: 1, ExamsPassed: 1, DataQualityLevel: schema.QualityLow}, true},
		{"low quality without attempt", schema.LearnerRecord{DataQualityLevel: schema.QualityLow}, false},
		{"all passed", schema.LearnerRecord{TotalExams: 3, ExamsPassed: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsAtRisk(tt.learner))
		})
	}
}

func TestClassifier_IsRisingStar(t *testing.T) {
	c := newTestClassifier()
	assert.True(t, c.IsRisingStar(schema.LearnerRecord{ExamsPassed: 2}))
	assert.True(t, c.IsRisingStar(schema.LearnerRecord{LearnerStatus: schema.StatusChampion}))
	assert.True(t, c.IsRisingStar(schema.LearnerRecord{LearnerStatus: schema.StatusMultiCertified}))
	assert.False(t, c.IsRisingStar(schema.LearnerRecord{ExamsPassed: 1, LearnerStatus: schema.StatusCertified}))
}

func TestClassifier_IsReadyToAdvance(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		name     string
		learner  schema.LearnerRecord
		expected bool
	}{
		{"one pass with copilot", schema.LearnerRecord{ExamsPassed: 1, UsesCopilot: true}, true},
		{"one pass with actions", schema.LearnerRecord{ExamsPassed: 1, UsesActions: true}, true},
		{"one pass without products", schema.LearnerRecord{ExamsPassed: 1}, false},
		{"certified heavy copilot", schema.LearnerRecord{LearnerStatus: schema.StatusCertified, CopilotDays: 31}, true},
		{"certified light copilot", schema.LearnerRecord{LearnerStatus: schema.StatusCertified, CopilotDays: 30}, false},
		{"learning heavy copilot", schema.LearnerRecord{LearnerStatus: schema.StatusLearning, CopilotDays: 61}, true},
		{"engaged light copilot", schema.LearnerRecord{LearnerStatus: schema.StatusEngaged, CopilotDays: 60}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsReadyToAdvance(tt.learner))
		})
	}
}

func TestClassifier_IsInactive(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		name         string
		lastActivity string
		expected     bool
	}{
		{"missing date", "", true},
		{"blank date", "   ", true},
		{"unparseable date", "not-a-date", false},
		{"recent", "2024-05-20", false},
		{"exactly ninety days", fixedNow.AddDate(0, 0, -90).Format(time.RFC3339), false},
		{"ninety one days", fixedNow.AddDate(0, 0, -91).Format(time.RFC3339), true},
		{"old date only", "2023-01-01", true},
		{"space separated", "2023-01-01 08:30:00", true},
		{"no zone", "2024-05-30T08:30:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsInactive(schema.LearnerRecord{LastActivity: tt.lastActivity}))
		})
	}
}

func TestClassifier_IsInactive_CustomWindow(t *testing.T) {
	c := &Classifier{Now: func() time.Time { return fixedNow }, InactiveAfterDays: 7}
	assert.True(t, c.IsInactive(schema.LearnerRecord{LastActivity: "2024-05-20"}))
	assert.False(t, c.IsInactive(schema.LearnerRecord{LastActivity: "2024-05-30"}))
}

func TestClassifier_IsHighValue(t *testing.T) {
	c := newTestClassifier()
	assert.True(t, c.IsHighValue(schema.LearnerRecord{LearnerStatus: schema.StatusMastery}))
	assert.True(t, c.IsHighValue(schema.LearnerRecord{ExamsPassed: 3}))
	assert.False(t, c.IsHighValue(schema.LearnerRecord{ExamsPassed: 2, LearnerStatus: schema.StatusCertified}))
}

func TestClassifier_Matches(t *testing.T) {
	c := newTestClassifier()
	l := schema.LearnerRecord{TotalExams: 2, ExamsPassed: 0, LastActivity: "2024-05-30"}
	assert.True(t, c.Matches(l, schema.SegmentAll))
	assert.True(t, c.Matches(l, schema.SegmentAtRisk))
	assert.False(t, c.Matches(l, schema.SegmentInactive))
	assert.False(t, c.Matches(l, schema.Segment("unknown")))
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier()
	l := schema.LearnerRecord{
		Handle:        "octo",
		LearnerStatus: schema.StatusChampion,
		ExamsPassed:   3,
		TotalExams:    5,
		LastActivity:  "",
	}
	membership := c.Classify(l)
	assert.Equal(t, schema.SegmentMembership{
		schema.SegmentAll,
		schema.SegmentAtRisk,
		schema.SegmentRisingStar,
		schema.SegmentInactive,
		schema.SegmentHighValue,
	}, membership)
	assert.Equal(t, "all,at_risk,rising_star,inactive,high_value", membership.String())
}

func TestClassifier_IsPureFunctionOfRecord(t *testing.T) {
	c := newTestClassifier()
	l := schema.LearnerRecord{Handle: "a", ExamsPassed: 1, TotalExams: 2, UsesCopilot: true, LastActivity: "2024-01-01"}
	first := c.Classify(l)
	for range 5 {
		assert.Equal(t, first, c.Classify(l))
	}

	renamed := l
	renamed.Handle = "b"
	renamed.Email = "b@example.com"
	assert.Equal(t, first, c.Classify(renamed))
}

func TestClassifier_FilterAndCount(t *testing.T) {
	c := newTestClassifier()
	learners := []schema.LearnerRecord{
		{Handle: "a", TotalExams: 2, ExamsPassed: 0, LastActivity: "2024-05-30"},
		{Handle: "b", ExamsPassed: 2, TotalExams: 2, LastActivity: "2024-05-30"},
		{Handle: "c", LastActivity: ""},
		{Handle: "d", ExamsPassed: 1, TotalExams: 1, UsesCopilot: true, LastActivity: "not-a-date"},
	}

	atRisk := c.Filter(learners, schema.SegmentAtRisk)
	assert.Len(t, atRisk, 1)
	assert.Equal(t, "a", atRisk[0].Handle)

	assert.Len(t, c.Filter(learners, schema.SegmentAll), 4)
	assert.Empty(t, c.Filter(learners, schema.SegmentHighValue))

	counts := c.CountSegments(learners)
	assert.Equal(t, schema.SegmentCounts{
		All:            4,
		AtRisk:         1,
		RisingStars:    1,
		ReadyToAdvance: 1,
		Inactive:       1,
		HighValue:      0,
	}, counts)

	classified := c.ClassifyAll(learners)
	assert.Len(t, classified, 4)
	assert.True(t, classified[2].Segments.Has(schema.SegmentInactive))
	assert.False(t, classified[3].Segments.Has(schema.SegmentInactive))
}

func TestNewClassifier(t *testing.T) {
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClassifier(&contract.Config{AsOf: asOf, InactiveDays: 30})
	assert.Equal(t, 30, c.InactiveAfterDays)
	assert.Equal(t, asOf, c.now())

	c = NewClassifier(&contract.Config{})
	assert.Equal(t, contract.DefaultInactiveDays, c.InactiveAfterDays)
}

func TestClassifier_ZeroValue(t *testing.T) {
	var c Classifier
	assert.Equal(t, contract.DefaultInactiveDays, c.inactiveAfter())
	assert.True(t, c.IsInactive(schema.LearnerRecord{LastActivity: "2000-01-01"}))
}

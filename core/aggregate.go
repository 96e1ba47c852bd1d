package core

import "github.com/skillpulse/skillpulse/schema"

// AggregateMetrics turns provider totals and the exam summary into program metrics.
// Rates are not clamped; a cert rate above 100 means the provider sent inconsistent totals.
func AggregateMetrics(in schema.AggregateInput) schema.ProgramMetrics {
	t := in.Totals
	s := in.Summary

	m := schema.ProgramMetrics{
		TotalLearners:      t.TotalLearners,
		CertifiedUsers:     t.CertifiedUsers,
		LearningUsers:      t.LearningUsers,
		ProspectUsers:      t.ProspectUsers,
		TotalCertsEarned:   t.TotalCertsEarned,
		RetentionRate:      t.RetentionRate,
		AvgProductsAdopted: t.AvgProductsAdopted,
		UsageIncrease:      t.AvgUsageIncrease,
		CertRate:           Percent(float64(t.CertifiedUsers), float64(t.TotalLearners)),
	}

	if in.HasSummary {
		m.TotalExamAttempts = s.TotalExamAttempts
		m.TotalNoShows = s.TotalNoShows
		m.PassRate = s.OverallPassRate
		m.HasPassRate = true

		scheduled := s.TotalExamAttempts + s.TotalNoShows
		m.NoShowRate = Percent(float64(s.TotalNoShows), float64(scheduled))
		m.HasNoShowRate = scheduled > 0
	}

	return m
}

// NewAggregateInput builds the aggregator input from a metrics response.
func NewAggregateInput(resp *schema.MetricsResponse) schema.AggregateInput {
	if resp == nil {
		return schema.AggregateInput{}
	}
	in := schema.AggregateInput{Totals: resp.Metrics}
	if ca := resp.CertificationAnalytics; ca != nil && ca.Summary != nil {
		in.Summary = *ca.Summary
		in.HasSummary = true
	}
	return in
}

// SummarizeLearners aggregates a collection of learner records.
func SummarizeLearners(learners []schema.LearnerRecord) schema.LearnerSummary {
	var (
		s            schema.LearnerSummary
		copilotDays  int
		qualityTotal float64
	)

	for _, l := range learners {
		s.Learners++
		if l.ExamsPassed >= 1 {
			s.CertifiedLearners++
		}
		s.ExamsPassed += l.ExamsPassed
		s.ExamsAttempted += l.TotalExams
		if l.UsesCopilot {
			s.CopilotUsers++
		}
		if l.UsesActions {
			s.ActionsUsers++
		}
		copilotDays += l.CopilotDays
		qualityTotal += l.DataQualityScore
	}

	n := float64(s.Learners)
	s.ExamPassRate = Percent(float64(s.ExamsPassed), float64(s.ExamsAttempted))
	s.CopilotAdoption = Percent(float64(s.CopilotUsers), n)
	s.ActionsAdoption = Percent(float64(s.ActionsUsers), n)
	s.AvgCopilotDays = SafeRatio(float64(copilotDays), n)
	s.AvgDataQualityScore = SafeRatio(qualityTotal, n)
	return s
}

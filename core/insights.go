package core

import (
	"fmt"

	"github.com/skillpulse/skillpulse/schema"
)

// insightRule emits at most one insight from the input.
type insightRule func(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool)

// insightRules are evaluated independently in this order.
var insightRules = []insightRule{
	certRateLowRule,
	certRateStrongRule,
	passRateLowRule,
	noShowHighRule,
	copilotLowRule,
	copilotStrongRule,
	funnelDropOffRule,
	completionTimeRule,
}

// GenerateInsights runs every rule and returns the emitted insights in rule order.
// A rule whose metric is unavailable emits nothing.
func GenerateInsights(in schema.InsightInput, t schema.InsightThresholds) []schema.InsightRecord {
	insights := make([]schema.InsightRecord, 0, len(insightRules))
	for _, rule := range insightRules {
		if rec, ok := rule(in, t); ok {
			insights = append(insights, rec)
		}
	}
	return insights
}

// NewInsightInput collects the insight inputs from derived metrics and the funnel.
func NewInsightInput(m schema.ProgramMetrics, roi schema.ROIInput, funnel schema.FunnelResult, impact *schema.ImpactResponse, avgTimeToCompletion float64) schema.InsightInput {
	in := schema.InsightInput{
		CertRate:            m.CertRate,
		HasCertRate:         m.TotalLearners > 0,
		PassRate:            m.PassRate,
		HasPassRate:         m.HasPassRate,
		NoShowRate:          m.NoShowRate,
		HasNoShowRate:       m.HasNoShowRate,
		CopilotAdoption:     roi.CopilotAdoption,
		HighestDropOff:      funnel.HighestDropOff,
		AvgTimeToCompletion: avgTimeToCompletion,
	}
	if impact != nil {
		_, in.HasCopilotAdoption = productAdoption(impact.ProductAdoption, "copilot")
	}
	return in
}

// FilterInsights keeps the insights with the given priority. An empty priority keeps all.
func FilterInsights(insights []schema.InsightRecord, priority schema.Priority) []schema.InsightRecord {
	if priority == "" {
		return insights
	}
	out := make([]schema.InsightRecord, 0, len(insights))
	for _, rec := range insights {
		if rec.Priority == priority {
			out = append(out, rec)
		}
	}
	return out
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func certRateLowRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasCertRate || in.CertRate >= t.CertRateLow {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightCertRateLow,
		Title:       "Certification rate needs attention",
		Description: fmt.Sprintf("Only %s of learners hold a certification, below the %s benchmark.", formatPercent(in.CertRate), formatPercent(t.CertRateLow)),
		Priority:    schema.PriorityHigh,
		Metric:      formatPercent(in.CertRate),
		Action:      "Run exam-prep sessions and follow up with learners who have not attempted an exam.",
	}, true
}

func certRateStrongRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasCertRate || in.CertRate < t.CertRateStrong {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightCertRateStrong,
		Title:       "Strong certification rate",
		Description: fmt.Sprintf("%s of learners are certified, at or above the %s benchmark.", formatPercent(in.CertRate), formatPercent(t.CertRateStrong)),
		Priority:    schema.PrioritySuccess,
		Metric:      formatPercent(in.CertRate),
		Action:      "Recruit certified learners as champions for the next cohort.",
	}, true
}

func passRateLowRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasPassRate || in.PassRate >= t.PassRateLow {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightPassRateLow,
		Title:       "Exam pass rate below target",
		Description: fmt.Sprintf("The overall exam pass rate is %s, below the %s target.", formatPercent(in.PassRate), formatPercent(t.PassRateLow)),
		Priority:    schema.PriorityMedium,
		Metric:      formatPercent(in.PassRate),
		Action:      "Review failed exam domains and point learners to targeted study material.",
	}, true
}

func noShowHighRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasNoShowRate || in.NoShowRate <= t.NoShowHigh {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightNoShowHigh,
		Title:       "High exam no-show rate",
		Description: fmt.Sprintf("%s of scheduled exams were missed, above the %s limit.", formatPercent(in.NoShowRate), formatPercent(t.NoShowHigh)),
		Priority:    schema.PriorityHigh,
		Metric:      formatPercent(in.NoShowRate),
		Action:      "Send exam reminders and offer rescheduling before the exam date.",
	}, true
}

func copilotLowRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasCopilotAdoption || in.CopilotAdoption >= t.CopilotLow {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightCopilotLow,
		Title:       "Copilot adoption opportunity",
		Description: fmt.Sprintf("Copilot adoption is %s, below the %s benchmark.", formatPercent(in.CopilotAdoption), formatPercent(t.CopilotLow)),
		Priority:    schema.PriorityMedium,
		Metric:      formatPercent(in.CopilotAdoption),
		Action:      "Pair certification content with hands-on Copilot workshops.",
	}, true
}

func copilotStrongRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if !in.HasCopilotAdoption || in.CopilotAdoption < t.CopilotStrong {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightCopilotStrong,
		Title:       "Strong Copilot adoption",
		Description: fmt.Sprintf("Copilot adoption reached %s after the program.", formatPercent(in.CopilotAdoption)),
		Priority:    schema.PrioritySuccess,
		Metric:      formatPercent(in.CopilotAdoption),
		Action:      "Share adoption stories to expand usage to adjacent teams.",
	}, true
}

func funnelDropOffRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	d := in.HighestDropOff
	if d == nil || d.DropOffRate <= t.DropOffHigh {
		return schema.InsightRecord{}, false
	}
	return schema.InsightRecord{
		ID:          schema.InsightFunnelDropOff,
		Title:       fmt.Sprintf("Largest drop-off after %s", d.FromStage),
		Description: fmt.Sprintf("%s of learners do not progress from %s to %s.", formatPercent(d.DropOffRate), d.FromStage, d.ToStage),
		Priority:    schema.PriorityMedium,
		Metric:      formatPercent(d.DropOffRate),
		Action:      fmt.Sprintf("Add a guided path from %s to %s.", d.FromStage, d.ToStage),
	}, true
}

func completionTimeRule(in schema.InsightInput, t schema.InsightThresholds) (schema.InsightRecord, bool) {
	if in.AvgTimeToCompletion <= t.CompletionDaysSlow {
		return schema.InsightRecord{}, false
	}
	days := fmt.Sprintf("%.0f days", in.AvgTimeToCompletion)
	return schema.InsightRecord{
		ID:          schema.InsightCompletionTimeSlow,
		Title:       "Slow time to certification",
		Description: fmt.Sprintf("Learners take %s on average to certify, longer than %.0f days.", days, t.CompletionDaysSlow),
		Priority:    schema.PriorityLow,
		Metric:      days,
		Action:      "Set milestone nudges to keep learners moving through the journey.",
	}, true
}

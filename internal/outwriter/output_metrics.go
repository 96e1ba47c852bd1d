package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// PrintMetricsDefinitions displays the score formula, grade bands, rate formulas and insight rules.
// This is a static display that does not contact the provider.
func PrintMetricsDefinitions(cfg *contract.Config) error {
	renderModel := buildMetricsRenderModel(cfg.Weights, cfg.Thresholds)

	return writeOutput(cfg, output{
		what: "metrics",
		text: func(w io.Writer) error {
			return printMetricsText(w, renderModel)
		},
		csv:  func() sheet { return metricsTermsSheet(renderModel) },
		json: func() any { return renderModel },
		xlsx: func() []sheet {
			return []sheet{metricsTermsSheet(renderModel), metricsRulesSheet(renderModel)}
		},
	})
}

// formatWeights formats weights for display in formulas.
func formatWeights(terms []schema.MetricsTerm) string {
	var parts []string
	for _, t := range terms {
		if t.Weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", t.Weight, t.Key))
		}
	}
	return strings.Join(parts, " + ")
}

// buildMetricsRenderModel constructs the complete render model with all processed data.
func buildMetricsRenderModel(w schema.ROIWeights, t schema.InsightThresholds) *schema.MetricsRenderModel {
	terms := []schema.MetricsTerm{
		{Key: schema.BreakdownCertRate, Name: "Certification rate", Description: "certified users over total learners, clamped to [0, 100]", Weight: w.CertRate},
		{Key: schema.BreakdownPassRate, Name: "Exam pass rate", Description: "provider overall pass rate, clamped to [0, 100]", Weight: w.PassRate},
		{Key: schema.BreakdownAdoption, Name: "Product adoption", Description: "mean of Copilot, Actions and Security adoption, each clamped to [0, 100]", Weight: w.Adoption},
		{Key: schema.BreakdownUsage, Name: "Usage increase", Description: "absolute average usage increase, capped at 100", Weight: w.Usage},
	}

	rules := []schema.MetricsRule{
		{ID: schema.InsightCertRateLow, Condition: fmt.Sprintf("cert_rate < %.1f", t.CertRateLow), Priority: schema.PriorityHigh},
		{ID: schema.InsightCertRateStrong, Condition: fmt.Sprintf("cert_rate >= %.1f", t.CertRateStrong), Priority: schema.PrioritySuccess},
		{ID: schema.InsightPassRateLow, Condition: fmt.Sprintf("pass_rate < %.1f", t.PassRateLow), Priority: schema.PriorityMedium},
		{ID: schema.InsightNoShowHigh, Condition: fmt.Sprintf("no_show_rate > %.1f", t.NoShowHigh), Priority: schema.PriorityHigh},
		{ID: schema.InsightCopilotLow, Condition: fmt.Sprintf("copilot_adoption < %.1f", t.CopilotLow), Priority: schema.PriorityMedium},
		{ID: schema.InsightCopilotStrong, Condition: fmt.Sprintf("copilot_adoption >= %.1f", t.CopilotStrong), Priority: schema.PrioritySuccess},
		{ID: schema.InsightFunnelDropOff, Condition: fmt.Sprintf("highest drop_off_rate > %.1f", t.DropOffHigh), Priority: schema.PriorityMedium},
		{ID: schema.InsightCompletionTimeSlow, Condition: fmt.Sprintf("avg_time_to_completion > %.0f days", t.CompletionDaysSlow), Priority: schema.PriorityLow},
	}

	return &schema.MetricsRenderModel{
		Title:       "SkillPulse ROI Score",
		Description: "Score = weighted sum of clamped percentages, rounded to the nearest integer",
		Formula:     formatWeights(terms),
		Terms:       terms,
		Grades:      schema.GradeThresholds(),
		Rules:       rules,
		Rates: map[string]string{
			"cert_rate":     "certified_users / total_learners * 100",
			"pass_rate":     "overall pass rate reported by the provider",
			"no_show_rate":  "no_shows / (exam_attempts + no_shows) * 100",
			"conversion":    "next stage count / stage count * 100",
			"drop_off_rate": "100 - conversion",
		},
	}
}

// sortedGrades returns grades from best to worst.
func sortedGrades(grades map[schema.Grade]float64) []schema.Grade {
	keys := make([]schema.Grade, 0, len(grades))
	for g := range grades {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool { return grades[keys[i]] > grades[keys[j]] })
	return keys
}

// sortedKeys returns the map keys in lexical order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printMetricsText displays metrics in human-readable text format.
func printMetricsText(w io.Writer, renderModel *schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "📐 %s\n", renderModel.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(renderModel.Title)+3)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", renderModel.Description); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "   Formula: Score = %s\n\n", renderModel.Formula); err != nil {
		return err
	}

	for _, term := range renderModel.Terms {
		if _, err := fmt.Fprintf(w, "   %-20s %.2f  %s\n", term.Name, term.Weight, term.Description); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n🏅 Grades\n"); err != nil {
		return err
	}
	for _, g := range sortedGrades(renderModel.Grades) {
		if _, err := fmt.Fprintf(w, "   %-3s >= %.0f\n", contract.GetColorGrade(g), renderModel.Grades[g]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n📏 Rates\n"); err != nil {
		return err
	}
	for _, k := range sortedKeys(renderModel.Rates) {
		if _, err := fmt.Fprintf(w, "   %-14s %s\n", k, renderModel.Rates[k]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n💡 Insight rules\n"); err != nil {
		return err
	}
	for _, r := range renderModel.Rules {
		if _, err := fmt.Fprintf(w, "   %-24s %-36s %s\n", r.ID, r.Condition, contract.GetColorPriority(r.Priority)); err != nil {
			return err
		}
	}
	return nil
}

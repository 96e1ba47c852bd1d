package core

import (
	"math"
	"strings"

	"github.com/skillpulse/skillpulse/schema"
)

// gradeThresholds maps minimum scores to grades, best first.
var gradeThresholds = []struct {
	min   int
	grade schema.Grade
}{
	{90, schema.GradeAPlus},
	{80, schema.GradeA},
	{70, schema.GradeB},
	{60, schema.GradeC},
}

// ComputeROI computes the weighted program health score.
// Certification and pass rates and each adoption rate are clamped to [0, 100];
// the usage term is the absolute usage increase capped at 100.
func ComputeROI(in schema.ROIInput, w schema.ROIWeights) schema.ROIResult {
	avgAdoption := (ClampPercent(in.CopilotAdoption) +
		ClampPercent(in.ActionsAdoption) +
		ClampPercent(in.SecurityAdoption)) / 3
	usage := math.Min(100, math.Abs(in.RawUsageIncrease))
	if math.IsNaN(usage) {
		usage = 0
	}

	breakdown := map[schema.BreakdownKey]float64{
		schema.BreakdownCertRate: ClampPercent(in.CertRate) * w.CertRate,
		schema.BreakdownPassRate: ClampPercent(in.PassRate) * w.PassRate,
		schema.BreakdownAdoption: avgAdoption * w.Adoption,
		schema.BreakdownUsage:    usage * w.Usage,
	}

	raw := breakdown[schema.BreakdownCertRate] +
		breakdown[schema.BreakdownPassRate] +
		breakdown[schema.BreakdownAdoption] +
		breakdown[schema.BreakdownUsage]
	score := int(math.Round(raw))

	return schema.ROIResult{
		Score:              score,
		RawScore:           raw,
		Grade:              GradeFor(score),
		AvgProductAdoption: avgAdoption,
		UsageIncrease:      usage,
		Breakdown:          breakdown,
	}
}

// GradeFor maps a rounded score to its letter grade.
func GradeFor(score int) schema.Grade {
	for _, g := range gradeThresholds {
		if score >= g.min {
			return g.grade
		}
	}
	return schema.GradeD
}

// NewROIInput collects the score inputs from the metrics and impact responses.
// Adoption rates come from the post-program product adoption entries.
func NewROIInput(m schema.ProgramMetrics, impact *schema.ImpactResponse) schema.ROIInput {
	in := schema.ROIInput{
		CertRate:         m.CertRate,
		PassRate:         m.PassRate,
		RawUsageIncrease: m.UsageIncrease,
	}
	if impact == nil {
		return in
	}
	if v, ok := productAdoption(impact.ProductAdoption, "copilot"); ok {
		in.CopilotAdoption = v
	}
	if v, ok := productAdoption(impact.ProductAdoption, "actions"); ok {
		in.ActionsAdoption = v
	}
	if v, ok := productAdoption(impact.ProductAdoption, "security"); ok {
		in.SecurityAdoption = v
	}
	return in
}

// productAdoption finds the first product whose name contains the needle, case-insensitively.
func productAdoption(products []schema.ProductAdoption, needle string) (float64, bool) {
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p.After, true
		}
	}
	return 0, false
}

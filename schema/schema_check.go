package schema

// CheckResult holds the results of an ROI policy check.
type CheckResult struct {
	Passed       bool            `json:"passed"`
	Score        int             `json:"score"`
	Grade        Grade           `json:"grade"`
	MinScore     float64         `json:"min_score"`
	HighInsights []InsightRecord `json:"high_insights"`
	Metrics      ProgramMetrics  `json:"metrics"`
}

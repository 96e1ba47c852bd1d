package schema

// MetricsTerm is one weighted term of the ROI score, for display purposes.
type MetricsTerm struct {
	Key         BreakdownKey `json:"key"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Weight      float64      `json:"weight"`
}

// MetricsRule is one insight rule, for display purposes.
type MetricsRule struct {
	ID        string   `json:"id"`
	Condition string   `json:"condition"`
	Priority  Priority `json:"priority"`
}

// MetricsRenderModel contains all processed data needed for displaying metric definitions.
type MetricsRenderModel struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Formula     string            `json:"formula"`
	Terms       []MetricsTerm     `json:"terms"`
	Grades      map[Grade]float64 `json:"grades"`
	Rules       []MetricsRule     `json:"rules"`
	Rates       map[string]string `json:"rates"`
}

// EnrichedInsight adds a rank to an insight for tabular output.
type EnrichedInsight struct {
	Rank int `json:"rank"`
	InsightRecord
}

// EnrichInsights adds ranks to a list of insights in generation order.
func EnrichInsights(insights []InsightRecord) []EnrichedInsight {
	output := make([]EnrichedInsight, len(insights))
	for i, in := range insights {
		output[i] = EnrichedInsight{
			Rank:          i + 1,
			InsightRecord: in,
		}
	}
	return output
}

// GradeThresholds returns the inclusive lower bound of each grade.
func GradeThresholds() map[Grade]float64 {
	return map[Grade]float64{
		GradeAPlus: 90,
		GradeA:     80,
		GradeB:     70,
		GradeC:     60,
		GradeD:     0,
	}
}

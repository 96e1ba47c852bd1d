package outwriter

import (
	"fmt"

	"github.com/skillpulse/skillpulse/schema"
)

// metricsTermsSheet lists the weighted score terms.
func metricsTermsSheet(renderModel *schema.MetricsRenderModel) sheet {
	rows := make([][]string, len(renderModel.Terms))
	for i, t := range renderModel.Terms {
		rows[i] = []string{string(t.Key), t.Name, fmt.Sprintf("%.2f", t.Weight), t.Description}
	}
	return sheet{name: "Terms", header: []string{"key", "name", "weight", "description"}, rows: rows}
}

// metricsRulesSheet lists the insight rules with their trigger conditions.
func metricsRulesSheet(renderModel *schema.MetricsRenderModel) sheet {
	rows := make([][]string, len(renderModel.Rules))
	for i, r := range renderModel.Rules {
		rows[i] = []string{r.ID, r.Condition, string(r.Priority)}
	}
	return sheet{name: "Rules", header: []string{"id", "condition", "priority"}, rows: rows}
}

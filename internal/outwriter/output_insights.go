package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/parquet"
	"github.com/skillpulse/skillpulse/schema"
)

// PrintInsights prints ranked insight records.
func PrintInsights(insights []schema.InsightRecord, cfg *contract.Config, duration time.Duration) error {
	enriched := schema.EnrichInsights(insights)

	return writeOutput(cfg, output{
		what: "insights",
		text: func(w io.Writer) error {
			return writeInsightsText(w, enriched, cfg, duration)
		},
		csv:  func() sheet { return insightsSheet(enriched) },
		json: func() any { return enriched },
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertInsights(enriched))
		},
	})
}

func insightsSheet(insights []schema.EnrichedInsight) sheet {
	rows := make([][]string, len(insights))
	for i, in := range insights {
		rows[i] = []string{
			strconv.Itoa(in.Rank),
			in.ID,
			string(in.Priority),
			in.Title,
			in.Description,
			in.Metric,
			in.Action,
		}
	}
	return sheet{
		name:   "Insights",
		header: []string{"rank", "id", "priority", "title", "description", "metric", "action"},
		rows:   rows,
	}
}

func writeInsightsText(w io.Writer, insights []schema.EnrichedInsight, cfg *contract.Config, duration time.Duration) error {
	if len(insights) == 0 {
		_, err := fmt.Fprintf(w, "No insights for the current data (computed in %v)\n", duration)
		return err
	}

	textWidth := getMaxTableTextWidth(cfg, 35) / 2
	rows := make([][]string, len(insights))
	for i, in := range insights {
		rows[i] = []string{
			strconv.Itoa(in.Rank),
			contract.GetColorPriority(in.Priority),
			contract.TruncateText(in.Title, max(textWidth, 15)),
			in.Metric,
			contract.TruncateText(in.Action, max(textWidth, 15)),
		}
	}
	if err := writeTable(w, []string{"Rank", "Priority", "Insight", "Metric", "Action"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d insights. Computed in %v\n", len(insights), duration)
	return err
}

package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// summaryTopInsights is how many insights the summary table shows.
const summaryTopInsights = 3

// PrintSummary prints the program metrics, ROI score, top insights and segment counts.
func PrintSummary(result *schema.DashboardResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)

	return writeOutput(cfg, output{
		what: "summary",
		text: func(w io.Writer) error {
			return writeSummaryText(w, result, cfg, fmtFloat, fmtPercent, duration)
		},
		csv: func() sheet {
			return summaryCSVSheet(result, fmtFloat, fmtPercent)
		},
		json: func() any { return result },
		xlsx: func() []sheet {
			return []sheet{
				metricsSheet(result, fmtFloat, fmtPercent),
				roiSheet(result, fmtFloat),
				insightsSheet(schema.EnrichInsights(result.Insights)),
				funnelSheet(result.Funnel, fmtFloat),
				segmentsSheet(result.Segments, result.SegmentsSource, fmtPercent),
			}
		},
	})
}

// metricRows lists the program metrics as name/value pairs.
// Rates that the provider did not supply read "unavailable".
func metricRows(result *schema.DashboardResult, fmtFloat, fmtPercent func(float64) string) [][]string {
	m := result.Metrics
	rateOrUnavailable := func(v float64, ok bool) string {
		if !ok {
			return "unavailable"
		}
		return fmtPercent(v)
	}
	return [][]string{
		{"Total learners", strconv.Itoa(m.TotalLearners)},
		{"Certified users", strconv.Itoa(m.CertifiedUsers)},
		{"Certification rate", fmtPercent(m.CertRate)},
		{"Exam pass rate", rateOrUnavailable(m.PassRate, m.HasPassRate)},
		{"No-show rate", rateOrUnavailable(m.NoShowRate, m.HasNoShowRate)},
		{"Avg product adoption", fmtPercent(result.ROI.AvgProductAdoption)},
		{"Usage increase", fmtPercent(m.UsageIncrease)},
		{"Avg days to certification", fmtFloat(result.AvgTimeToCompletion)},
	}
}

// roiRows lists each score term with its contribution, in formula order.
func roiRows(result *schema.DashboardResult, fmtFloat func(float64) string) [][]string {
	keys := []schema.BreakdownKey{
		schema.BreakdownCertRate,
		schema.BreakdownPassRate,
		schema.BreakdownAdoption,
		schema.BreakdownUsage,
	}
	rows := make([][]string, 0, len(keys)+1)
	for _, k := range keys {
		rows = append(rows, []string{string(k), fmtFloat(result.ROI.Breakdown[k])})
	}
	rows = append(rows, []string{"total", fmtFloat(result.ROI.RawScore)})
	return rows
}

func metricsSheet(result *schema.DashboardResult, fmtFloat, fmtPercent func(float64) string) sheet {
	return sheet{name: "Metrics", header: []string{"metric", "value"}, rows: metricRows(result, fmtFloat, fmtPercent)}
}

func roiSheet(result *schema.DashboardResult, fmtFloat func(float64) string) sheet {
	rows := roiRows(result, fmtFloat)
	rows = append(rows,
		[]string{"score", strconv.Itoa(result.ROI.Score)},
		[]string{"grade", string(result.ROI.Grade)},
	)
	return sheet{name: "ROI", header: []string{"term", "contribution"}, rows: rows}
}

// summaryCSVSheet flattens the summary into section/name/value rows.
func summaryCSVSheet(result *schema.DashboardResult, fmtFloat, fmtPercent func(float64) string) sheet {
	var rows [][]string
	for _, r := range metricRows(result, fmtFloat, fmtPercent) {
		rows = append(rows, []string{"metrics", r[0], r[1]})
	}
	for _, r := range roiRows(result, fmtFloat) {
		rows = append(rows, []string{"roi", r[0], r[1]})
	}
	rows = append(rows,
		[]string{"roi", "score", strconv.Itoa(result.ROI.Score)},
		[]string{"roi", "grade", string(result.ROI.Grade)},
	)
	for _, in := range result.Insights {
		rows = append(rows, []string{"insights", in.ID, in.Metric})
	}
	for _, s := range schema.AllSegments {
		rows = append(rows, []string{"segments", string(s), strconv.Itoa(result.Segments.Get(s))})
	}
	return sheet{name: "Summary", header: []string{"section", "name", "value"}, rows: rows}
}

// writeSummaryText renders the summary as tables.
func writeSummaryText(w io.Writer, result *schema.DashboardResult, cfg *contract.Config, fmtFloat, fmtPercent func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "📊 Program Summary\n\n"); err != nil {
		return err
	}
	if err := writeTable(w, []string{"Metric", "Value"}, metricRows(result, fmtFloat, fmtPercent)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n🎯 ROI score: %d (%s)\n", result.ROI.Score, contract.GetColorGrade(result.ROI.Grade)); err != nil {
		return err
	}
	if err := writeTable(w, []string{"Term", "Contribution"}, roiRows(result, fmtFloat)); err != nil {
		return err
	}

	if len(result.Insights) > 0 {
		top := result.Insights[:min(len(result.Insights), summaryTopInsights)]
		if _, err := fmt.Fprintf(w, "\n💡 Top insights (%d of %d)\n", len(top), len(result.Insights)); err != nil {
			return err
		}
		titleWidth := getMaxTableTextWidth(cfg, 30)
		rows := make([][]string, len(top))
		for i, in := range top {
			rows[i] = []string{
				contract.GetColorPriority(in.Priority),
				contract.TruncateText(in.Title, titleWidth),
				in.Metric,
			}
		}
		if err := writeTable(w, []string{"Priority", "Insight", "Metric"}, rows); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n👥 Segments (%s counts)\n", result.SegmentsSource); err != nil {
		return err
	}
	if err := writeTable(w, []string{"Segment", "Learners", "Share"}, segmentRows(result.Segments, fmtPercent)); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Computed in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

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

// learnersJSON is the JSON shape of a learner listing.
type learnersJSON struct {
	Total    int                        `json:"total_count"`
	Learners []schema.ClassifiedLearner `json:"learners"`
}

// PrintLearners prints learners with their segment membership.
// Total is the size of the full result set, which may exceed the learners shown.
func PrintLearners(learners []schema.ClassifiedLearner, total int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	return writeOutput(cfg, output{
		what: "learners",
		text: func(w io.Writer) error {
			return writeLearnersText(w, learners, total, cfg, duration)
		},
		csv:  func() sheet { return learnersSheet(learners, fmtFloat) },
		json: func() any { return learnersJSON{Total: total, Learners: learners} },
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertLearners(learners))
		},
	})
}

func learnersSheet(learners []schema.ClassifiedLearner, fmtFloat func(float64) string) sheet {
	rows := make([][]string, len(learners))
	for i, l := range learners {
		rows[i] = []string{
			l.Handle,
			l.Email,
			l.LearnerStatus,
			strconv.Itoa(l.ExamsPassed),
			strconv.Itoa(l.TotalExams),
			strconv.FormatBool(l.UsesCopilot),
			strconv.FormatBool(l.UsesActions),
			strconv.Itoa(l.CopilotDays),
			l.LastActivity,
			fmtFloat(l.DataQualityScore),
			string(l.DataQualityLevel),
			l.Segments.String(),
		}
	}
	return sheet{
		name: "Learners",
		header: []string{
			"handle", "email", "learner_status", "exams_passed", "total_exams",
			"uses_copilot", "uses_actions", "copilot_days", "last_activity",
			"data_quality_score", "data_quality_level", "segments",
		},
		rows: rows,
	}
}

func writeLearnersText(w io.Writer, learners []schema.ClassifiedLearner, total int, cfg *contract.Config, duration time.Duration) error {
	nameWidth := getMaxTableTextWidth(cfg, 60)
	rows := make([][]string, len(learners))
	for i, l := range learners {
		rows[i] = []string{
			strconv.Itoa(cfg.Offset + i + 1),
			contract.TruncateText(l.DisplayName(), nameWidth),
			l.LearnerStatus,
			fmt.Sprintf("%d/%d", l.ExamsPassed, l.TotalExams),
			strconv.Itoa(l.CopilotDays),
			l.LastActivity,
			segmentLabels(l.Segments),
		}
	}
	header := []string{"#", "Learner", "Status", "Passed", "Copilot Days", "Last Activity", "Segments"}
	if err := writeTable(w, header, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d learners. Fetched in %v\n", len(learners), total, duration)
	return err
}

// segmentLabels lists the segments other than "all".
func segmentLabels(m schema.SegmentMembership) string {
	named := make(schema.SegmentMembership, 0, len(m))
	for _, s := range m {
		if s != schema.SegmentAll {
			named = append(named, s)
		}
	}
	if len(named) == 0 {
		return "-"
	}
	return named.String()
}

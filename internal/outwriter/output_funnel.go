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

// funnelJSON is the JSON shape of the journey funnel.
type funnelJSON struct {
	schema.FunnelResult
	AvgTimeToCompletion float64 `json:"avg_time_to_completion"`
}

// PrintFunnel prints funnel stages with conversion to the next stage and the highest drop-off.
func PrintFunnel(funnel schema.FunnelResult, avgTimeToCompletion float64, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)

	return writeOutput(cfg, output{
		what: "funnel",
		text: func(w io.Writer) error {
			return writeFunnelText(w, funnel, avgTimeToCompletion, fmtFloat, fmtPercent, duration)
		},
		csv:  func() sheet { return funnelSheet(funnel, fmtFloat) },
		json: func() any { return funnelJSON{FunnelResult: funnel, AvgTimeToCompletion: avgTimeToCompletion} },
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertFunnel(funnel))
		},
	})
}

// funnelRows pairs each stage with its outgoing conversion. The last stage has none.
func funnelRows(funnel schema.FunnelResult, format func(float64) string) [][]string {
	rows := make([][]string, len(funnel.Stages))
	for i, s := range funnel.Stages {
		row := []string{s.Stage, strconv.Itoa(s.Count), format(s.Percentage), "", "", ""}
		if i < len(funnel.Conversions) {
			c := funnel.Conversions[i]
			row[3] = c.ToStage
			row[4] = format(c.ConversionRate)
			row[5] = format(c.DropOffRate)
		}
		rows[i] = row
	}
	return rows
}

func funnelSheet(funnel schema.FunnelResult, fmtFloat func(float64) string) sheet {
	return sheet{
		name:   "Funnel",
		header: []string{"stage", "count", "percentage", "next_stage", "conversion_rate", "drop_off_rate"},
		rows:   funnelRows(funnel, fmtFloat),
	}
}

func writeFunnelText(w io.Writer, funnel schema.FunnelResult, avgTime float64, fmtFloat, fmtPercent func(float64) string, duration time.Duration) error {
	if len(funnel.Stages) == 0 {
		_, err := fmt.Fprintf(w, "The journey funnel is empty (computed in %v)\n", duration)
		return err
	}
	header := []string{"Stage", "Learners", "Of First", "Next", "Conversion", "Drop-off"}
	if err := writeTable(w, header, funnelRows(funnel, fmtPercent)); err != nil {
		return err
	}

	if d := funnel.HighestDropOff; d != nil {
		if _, err := fmt.Fprintf(w, "Highest drop-off: %s -> %s (%s)\n", d.FromStage, d.ToStage, fmtPercent(d.DropOffRate)); err != nil {
			return err
		}
	}
	if avgTime > 0 {
		if _, err := fmt.Fprintf(w, "Average time to certification: %s days\n", fmtFloat(avgTime)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Computed in %v\n", duration)
	return err
}

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

// segmentsJSON is the JSON shape of segment counts.
type segmentsJSON struct {
	Source string               `json:"source"`
	Counts schema.SegmentCounts `json:"counts"`
}

// PrintSegments prints segment counts with each segment's share of all learners.
func PrintSegments(counts schema.SegmentCounts, source string, cfg *contract.Config, duration time.Duration) error {
	_, fmtPercent := createFormatters(cfg.Precision)

	return writeOutput(cfg, output{
		what: "segments",
		text: func(w io.Writer) error {
			if err := writeTable(w, []string{"Segment", "Learners", "Share"}, segmentRows(counts, fmtPercent)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Counts from %s. Computed in %v\n", source, duration)
			return err
		},
		csv:  func() sheet { return segmentsSheet(counts, source, fmtPercent) },
		json: func() any { return segmentsJSON{Source: source, Counts: counts} },
		parquet: func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSegmentCounts(counts, source))
		},
	})
}

// segmentRows lists every segment in display order. Share is relative to the "all" count.
func segmentRows(counts schema.SegmentCounts, fmtPercent func(float64) string) [][]string {
	rows := make([][]string, len(schema.AllSegments))
	for i, s := range schema.AllSegments {
		n := counts.Get(s)
		share := 0.0
		if counts.All > 0 {
			share = float64(n) / float64(counts.All) * 100
		}
		rows[i] = []string{string(s), strconv.Itoa(n), fmtPercent(share)}
	}
	return rows
}

func segmentsSheet(counts schema.SegmentCounts, source string, fmtPercent func(float64) string) sheet {
	rows := segmentRows(counts, fmtPercent)
	for i := range rows {
		rows[i] = append(rows[i], source)
	}
	return sheet{name: "Segments", header: []string{"segment", "count", "share", "source"}, rows: rows}
}

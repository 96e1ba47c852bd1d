// Package parquet provides row types and writers for exporting skillpulse
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/skillpulse/skillpulse/schema"
)

// Snapshot is one recorded dashboard refresh.
// This struct maps to the skillpulse_snapshots database table.
type Snapshot struct {
	SnapshotID     int64      `parquet:"snapshot_id,snappy"`
	StartTime      time.Time  `parquet:"start_time,snappy"`
	EndTime        *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs  *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalLearners  int32      `parquet:"total_learners,snappy"`
	CertifiedUsers int32      `parquet:"certified_users,snappy"`
	CertRate       float64    `parquet:"cert_rate,snappy"`
	PassRate       float64    `parquet:"pass_rate,snappy"`
	NoShowRate     float64    `parquet:"no_show_rate,snappy"`
	ROIScore       int32      `parquet:"roi_score,snappy"`
	Grade          string     `parquet:"grade,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SnapshotInsight is one insight emitted during a snapshot.
// This struct maps to the skillpulse_snapshot_insights database table.
type SnapshotInsight struct {
	SnapshotID int64     `parquet:"snapshot_id,snappy"`
	InsightID  string    `parquet:"insight_id,snappy"`
	Priority   string    `parquet:"priority,snappy"`
	Title      string    `parquet:"title,snappy"`
	Metric     string    `parquet:"metric,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// Learner is one classified learner in a learners export.
type Learner struct {
	Handle           string  `parquet:"handle,snappy"`
	Email            string  `parquet:"email,snappy"`
	LearnerStatus    string  `parquet:"learner_status,snappy"`
	ExamsPassed      int32   `parquet:"exams_passed,snappy"`
	TotalExams       int32   `parquet:"total_exams,snappy"`
	UsesCopilot      bool    `parquet:"uses_copilot,snappy"`
	UsesActions      bool    `parquet:"uses_actions,snappy"`
	CopilotDays      int32   `parquet:"copilot_days,snappy"`
	LastActivity     string  `parquet:"last_activity,snappy"`
	DataQualityScore float64 `parquet:"data_quality_score,snappy"`
	DataQualityLevel string  `parquet:"data_quality_level,snappy"`

	// Segments is the comma-separated segment membership
	Segments string `parquet:"segments,snappy"`
}

// Insight is one ranked insight in an insights export.
type Insight struct {
	Rank        int32  `parquet:"rank,snappy"`
	ID          string `parquet:"id,snappy"`
	Priority    string `parquet:"priority,snappy"`
	Title       string `parquet:"title,snappy"`
	Description string `parquet:"description,snappy"`
	Metric      string `parquet:"metric,snappy"`
	Action      string `parquet:"action,snappy"`
}

// FunnelStage is one funnel stage joined with the conversion into the next stage.
type FunnelStage struct {
	Stage          string   `parquet:"stage,snappy"`
	Count          int32    `parquet:"count,snappy"`
	Percentage     float64  `parquet:"percentage,snappy"`
	NextStage      *string  `parquet:"next_stage,optional,snappy"`
	ConversionRate *float64 `parquet:"conversion_rate,optional,snappy"`
	DropOffRate    *float64 `parquet:"drop_off_rate,optional,snappy"`
}

// SegmentCount is one segment with its learner count.
type SegmentCount struct {
	Segment string `parquet:"segment,snappy"`
	Count   int32  `parquet:"count,snappy"`
	Source  string `parquet:"source,snappy"`
}

// Write encodes rows to w using the schema inferred from T's struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertSnapshotRecords converts stored snapshots to Parquet rows.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []Snapshot {
	result := make([]Snapshot, len(records))
	for i, record := range records {
		var duration *int32
		if record.RunDurationMs != nil {
			d := int32(*record.RunDurationMs)
			duration = &d
		}
		result[i] = Snapshot{
			SnapshotID:     record.SnapshotID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  duration,
			TotalLearners:  int32(record.TotalLearners),
			CertifiedUsers: int32(record.CertifiedUsers),
			CertRate:       record.CertRate,
			PassRate:       record.PassRate,
			NoShowRate:     record.NoShowRate,
			ROIScore:       int32(record.ROIScore),
			Grade:          record.Grade,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertSnapshotInsightRecords converts stored insight rows to Parquet rows.
func ConvertSnapshotInsightRecords(records []schema.SnapshotInsightRecord) []SnapshotInsight {
	result := make([]SnapshotInsight, len(records))
	for i, record := range records {
		result[i] = SnapshotInsight(record)
	}
	return result
}

// ConvertLearners converts classified learners to Parquet rows.
func ConvertLearners(learners []schema.ClassifiedLearner) []Learner {
	result := make([]Learner, len(learners))
	for i, l := range learners {
		result[i] = Learner{
			Handle:           l.Handle,
			Email:            l.Email,
			LearnerStatus:    l.LearnerStatus,
			ExamsPassed:      int32(l.ExamsPassed),
			TotalExams:       int32(l.TotalExams),
			UsesCopilot:      l.UsesCopilot,
			UsesActions:      l.UsesActions,
			CopilotDays:      int32(l.CopilotDays),
			LastActivity:     l.LastActivity,
			DataQualityScore: l.DataQualityScore,
			DataQualityLevel: string(l.DataQualityLevel),
			Segments:         l.Segments.String(),
		}
	}
	return result
}

// ConvertInsights converts ranked insights to Parquet rows.
func ConvertInsights(insights []schema.EnrichedInsight) []Insight {
	result := make([]Insight, len(insights))
	for i, in := range insights {
		result[i] = Insight{
			Rank:        int32(in.Rank),
			ID:          in.ID,
			Priority:    string(in.Priority),
			Title:       in.Title,
			Description: in.Description,
			Metric:      in.Metric,
			Action:      in.Action,
		}
	}
	return result
}

// ConvertFunnel joins each stage with the conversion that leaves it.
// The last stage has no conversion and its optional columns stay null.
func ConvertFunnel(funnel schema.FunnelResult) []FunnelStage {
	result := make([]FunnelStage, len(funnel.Stages))
	for i, stage := range funnel.Stages {
		result[i] = FunnelStage{
			Stage:      stage.Stage,
			Count:      int32(stage.Count),
			Percentage: stage.Percentage,
		}
		if i < len(funnel.Conversions) {
			c := funnel.Conversions[i]
			result[i].NextStage = &c.ToStage
			result[i].ConversionRate = &c.ConversionRate
			result[i].DropOffRate = &c.DropOffRate
		}
	}
	return result
}

// ConvertSegmentCounts converts segment counts to Parquet rows in display order.
func ConvertSegmentCounts(counts schema.SegmentCounts, source string) []SegmentCount {
	result := make([]SegmentCount, len(schema.AllSegments))
	for i, seg := range schema.AllSegments {
		result[i] = SegmentCount{Segment: string(seg), Count: int32(counts.Get(seg)), Source: source}
	}
	return result
}

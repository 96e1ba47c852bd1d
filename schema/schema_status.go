package schema

import "time"

// CacheStatus represents the status of the response cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend            string           `json:"backend"`
	Connected          bool             `json:"connected"`
	TotalSnapshots     int              `json:"total_snapshots"`
	LastSnapshotID     int64            `json:"last_snapshot_id"`
	LastSnapshotTime   time.Time        `json:"last_snapshot_time"`
	OldestSnapshotTime time.Time        `json:"oldest_snapshot_time"`
	TotalInsights      int              `json:"total_insights"`
	TableSizes         map[string]int64 `json:"table_sizes"`
}

// SnapshotRecord represents a row from the skillpulse_snapshots table.
type SnapshotRecord struct {
	SnapshotID     int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int
	TotalLearners  int
	CertifiedUsers int
	CertRate       float64
	PassRate       float64
	NoShowRate     float64
	ROIScore       int
	Grade          string
	ConfigParams   *string
}

// SnapshotInsightRecord represents a row from the skillpulse_snapshot_insights table.
type SnapshotInsightRecord struct {
	SnapshotID int64
	InsightID  string
	Priority   string
	Title      string
	Metric     string
	RecordedAt time.Time
}

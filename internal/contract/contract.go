// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/skillpulse/skillpulse/schema"
)

// DataProvider defines the read operations against the Raw Data Provider.
// This allows the engine orchestration to be tested without a live HTTP backend.
type DataProvider interface {
	// FetchMetrics returns program totals and the certification summary.
	FetchMetrics(ctx context.Context) (*schema.MetricsResponse, error)

	// FetchJourney returns the funnel and completion timing.
	FetchJourney(ctx context.Context) (*schema.JourneyResponse, error)

	// FetchImpact returns product adoption and stage impact.
	FetchImpact(ctx context.Context) (*schema.ImpactResponse, error)

	// FetchLearners returns one normalized page of learners.
	FetchLearners(ctx context.Context, query schema.LearnerQuery) (*schema.LearnerPage, error)

	// FetchSegmentCounts returns precomputed counts across the full population.
	FetchSegmentCounts(ctx context.Context) (*schema.SegmentCounts, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetSnapshotStore() SnapshotStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// SnapshotStore defines the interface for recording dashboard snapshots over time.
type SnapshotStore interface {
	// BeginSnapshot creates a new snapshot and returns its unique ID
	BeginSnapshot(startTime time.Time, configParams map[string]any) (int64, error)

	// EndSnapshot stores the derived results and completion time of a snapshot
	EndSnapshot(snapshotID int64, endTime time.Time, result schema.DashboardResult) error

	// RecordInsights stores the insights emitted for a snapshot
	RecordInsights(snapshotID int64, recordedAt time.Time, insights []schema.InsightRecord) error

	// GetAllSnapshots returns every stored snapshot
	GetAllSnapshots() ([]schema.SnapshotRecord, error)

	// GetAllSnapshotInsights returns every stored insight row
	GetAllSnapshotInsights() ([]schema.SnapshotInsightRecord, error)

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.SnapshotStatus, error)

	// Close closes the underlying connection
	Close() error
}

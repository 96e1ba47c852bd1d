package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

// Sources of segment counts.
const (
	SegmentsFromProvider = "provider"
	SegmentsFromLocal    = "local"
)

// dashboardInputs is everything the derived dashboard depends on.
type dashboardInputs struct {
	Metrics    *schema.MetricsResponse  `json:"metrics"`
	Journey    *schema.JourneyResponse  `json:"journey"`
	Impact     *schema.ImpactResponse   `json:"impact"`
	Weights    schema.ROIWeights        `json:"weights"`
	Thresholds schema.InsightThresholds `json:"thresholds"`
}

// dashboardMemo reuses derived results when a refresh returns identical data.
var dashboardMemo = NewMemo(deriveDashboard, 32)

// BuildDashboard derives every engine output from provider responses.
// Missing responses yield zero metrics and fewer insights, never an error.
func BuildDashboard(metrics *schema.MetricsResponse, journey *schema.JourneyResponse, impact *schema.ImpactResponse, weights schema.ROIWeights, thresholds schema.InsightThresholds) schema.DashboardResult {
	return dashboardMemo.Get(dashboardInputs{
		Metrics:    metrics,
		Journey:    journey,
		Impact:     impact,
		Weights:    weights,
		Thresholds: thresholds,
	})
}

func deriveDashboard(in dashboardInputs) schema.DashboardResult {
	metrics := AggregateMetrics(NewAggregateInput(in.Metrics))

	var (
		stages  []schema.FunnelStage
		avgTime float64
	)
	if in.Journey != nil {
		stages = in.Journey.Funnel
		avgTime = in.Journey.AvgTimeToCompletion
	}
	funnel := ComputeFunnel(stages)

	roiInput := NewROIInput(metrics, in.Impact)
	roi := ComputeROI(roiInput, in.Weights)

	insightInput := NewInsightInput(metrics, roiInput, funnel, in.Impact, avgTime)
	if len(stages) < 2 && in.Journey != nil {
		insightInput.HighestDropOff = dropOffFromAnalysis(in.Journey.DropOffAnalysis)
	}

	return schema.DashboardResult{
		Metrics:             metrics,
		ROIInput:            roiInput,
		ROI:                 roi,
		Insights:            GenerateInsights(insightInput, in.Thresholds),
		Funnel:              funnel,
		AvgTimeToCompletion: avgTime,
	}
}

// GetDashboardResults fetches every provider section concurrently, joins them,
// and derives the dashboard. Any fetch failure aborts the run so the engine
// never sees partial data. Segment counts fall back to a local recount when
// the provider cannot serve them.
func GetDashboardResults(ctx context.Context, cfg *contract.Config, p contract.DataProvider, mgr contract.CacheManager) (*schema.DashboardResult, error) {
	start := time.Now()

	// --- 0. Begin Snapshot Tracking (if configured) ---
	snapshotStore := getSnapshotStore(mgr)
	var snapshotID int64
	if snapshotStore != nil {
		var err error
		snapshotID, err = snapshotStore.BeginSnapshot(start, snapshotConfigParams(cfg))
		if err != nil {
			contract.LogWarn("Snapshot tracking initialization failed", err)
		}
	}

	// --- 1. Fetch Phase ---
	var (
		metrics *schema.MetricsResponse
		journey *schema.JourneyResponse
		impact  *schema.ImpactResponse
		counts  *schema.SegmentCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if metrics, err = p.FetchMetrics(gctx); err != nil {
			return fmt.Errorf("fetch metrics: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if journey, err = p.FetchJourney(gctx); err != nil {
			return fmt.Errorf("fetch journey: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if impact, err = p.FetchImpact(gctx); err != nil {
			return fmt.Errorf("fetch impact: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		c, err := p.FetchSegmentCounts(gctx)
		if err != nil {
			contract.LogWarn("Provider segment counts unavailable, counting locally", err)
			return nil
		}
		counts = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// --- 2. Derive Phase ---
	result := BuildDashboard(metrics, journey, impact, EffectiveWeights(cfg), EffectiveThresholds(cfg))

	// --- 3. Segment Counts ---
	if counts != nil {
		result.Segments = *counts
		result.SegmentsSource = SegmentsFromProvider
	} else {
		learners, err := provider.FetchAllLearners(ctx, p, cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("count segments locally: %w", err)
		}
		result.Segments = NewClassifier(cfg).CountSegments(learners)
		result.SegmentsSource = SegmentsFromLocal
	}

	// --- 4. End Snapshot Tracking ---
	if snapshotStore != nil && snapshotID > 0 {
		end := time.Now()
		if err := snapshotStore.EndSnapshot(snapshotID, end, result); err != nil {
			contract.LogWarn("Failed to finalize snapshot", err)
		} else if err := snapshotStore.RecordInsights(snapshotID, end, result.Insights); err != nil {
			contract.LogWarn("Failed to record snapshot insights", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"score":    result.ROI.Score,
		"insights": len(result.Insights),
		"segments": result.SegmentsSource,
		"duration": time.Since(start).String(),
	}).Debug("dashboard computed")

	return &result, nil
}

// getSnapshotStore returns the snapshot store, or nil when tracking is off.
func getSnapshotStore(mgr contract.CacheManager) contract.SnapshotStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetSnapshotStore()
}

// snapshotConfigParams records the settings that shape a snapshot's results.
func snapshotConfigParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"provider_url":  cfg.ProviderURL,
		"inactive_days": cfg.InactiveDays,
		"weights":       EffectiveWeights(cfg),
		"thresholds":    EffectiveThresholds(cfg),
	}
	if !cfg.AsOf.IsZero() {
		params["as_of"] = cfg.AsOf.Format(contract.DateTimeFormat)
	}
	return params
}

// EffectiveWeights returns the configured weights, or the defaults when unset.
func EffectiveWeights(cfg *contract.Config) schema.ROIWeights {
	if cfg.Weights == (schema.ROIWeights{}) {
		w, _ := contract.ProcessWeightsRawInput(contract.WeightsRawInput{}, false)
		return w
	}
	return cfg.Weights
}

// EffectiveThresholds returns the configured thresholds, or the defaults when unset.
func EffectiveThresholds(cfg *contract.Config) schema.InsightThresholds {
	if cfg.Thresholds == (schema.InsightThresholds{}) {
		return schema.DefaultInsightThresholds()
	}
	return cfg.Thresholds
}

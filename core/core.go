// Package core has core logic for metrics, segmentation, scoring and funnels.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/outwriter"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

// ExecutorFunc defines the function signature for executing the data commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// NewDataProvider builds the provider client, wrapped with the response cache when one is configured.
func NewDataProvider(cfg *contract.Config, mgr contract.CacheManager) (contract.DataProvider, error) {
	if err := contract.RequireProvider(cfg); err != nil {
		return nil, err
	}
	client, err := provider.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if mgr == nil || mgr.GetResponseStore() == nil {
		return client, nil
	}
	return NewCachedProvider(client, mgr.GetResponseStore(), cfg), nil
}

// ExecuteSummary computes the dashboard and prints the program summary.
// With a watch interval it refreshes until interrupted.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.Watch > 0 {
		return runWatch(ctx, cfg, p, mgr)
	}

	start := time.Now()
	logDashboardHeader(ctx, cfg)
	result, err := GetDashboardResults(ctx, cfg, p, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSummary(result, cfg, time.Since(start))
}

// ExecuteInsights computes the dashboard and prints its insights,
// optionally filtered by priority.
func ExecuteInsights(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}

	start := time.Now()
	logDashboardHeader(ctx, cfg)
	result, err := GetDashboardResults(ctx, cfg, p, mgr)
	if err != nil {
		return err
	}
	insights := FilterInsights(result.Insights, cfg.Priority)
	return outwriter.PrintInsights(insights, cfg, time.Since(start))
}

// ExecuteSegments prints the segment counts across the full population.
func ExecuteSegments(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}

	start := time.Now()
	logDashboardHeader(ctx, cfg)
	counts, source, err := GetSegmentCounts(ctx, cfg, p)
	if err != nil {
		return err
	}
	return outwriter.PrintSegments(counts, source, cfg, time.Since(start))
}

// ExecuteFunnel prints the journey funnel with stage conversions.
func ExecuteFunnel(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}

	start := time.Now()
	logDashboardHeader(ctx, cfg)
	journey, err := p.FetchJourney(ctx)
	if err != nil {
		return fmt.Errorf("fetch journey: %w", err)
	}
	funnel := ComputeFunnel(journey.Funnel)
	return outwriter.PrintFunnel(funnel, journey.AvgTimeToCompletion, cfg, time.Since(start))
}

// ExecuteLearners prints learners with their segment membership.
// A single page is requested unless cfg.AllPages is set.
func ExecuteLearners(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}

	start := time.Now()
	logDashboardHeader(ctx, cfg)
	learners, total, err := GetLearners(ctx, cfg, p)
	if err != nil {
		return err
	}
	return outwriter.PrintLearners(learners, total, cfg, time.Since(start))
}

// ExecuteMetricsDefinitions prints the formulas, weights and thresholds.
// It never contacts the provider.
func ExecuteMetricsDefinitions(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	resolved := cfg.Clone()
	resolved.Weights = EffectiveWeights(cfg)
	resolved.Thresholds = EffectiveThresholds(cfg)
	return outwriter.PrintMetricsDefinitions(resolved)
}

// InvalidateCache removes cached responses for the named endpoints,
// or for every endpoint when none are named.
func InvalidateCache(cfg *contract.Config, mgr contract.CacheManager, names []string) (int, error) {
	endpoints := make([]schema.Endpoint, 0, len(names))
	for _, name := range names {
		e := schema.Endpoint(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := schema.ValidEndpoints[e]; !ok {
			return 0, fmt.Errorf("invalid endpoint '%s'. must be metrics, journey, impact, enriched-learners, segment-counts", name)
		}
		endpoints = append(endpoints, e)
	}

	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return 0, err
	}
	cached, ok := p.(*CachedProvider)
	if !ok {
		return 0, errors.New("response cache is not configured")
	}
	return cached.Invalidate(endpoints...)
}

// GetSegmentCounts returns provider counts, or a local recount when the provider has none.
func GetSegmentCounts(ctx context.Context, cfg *contract.Config, p contract.DataProvider) (schema.SegmentCounts, string, error) {
	counts, err := p.FetchSegmentCounts(ctx)
	if err == nil {
		return *counts, SegmentsFromProvider, nil
	}
	if ctx.Err() != nil {
		return schema.SegmentCounts{}, "", ctx.Err()
	}
	contract.LogWarn("Provider segment counts unavailable, counting locally", err)

	learners, err := provider.FetchAllLearners(ctx, p, cfg.PageSize)
	if err != nil {
		return schema.SegmentCounts{}, "", fmt.Errorf("count segments locally: %w", err)
	}
	return NewClassifier(cfg).CountSegments(learners), SegmentsFromLocal, nil
}

// GetLearners fetches learners and tags each with its segments.
// Segment filtering is re-applied locally so results match the local rules.
// With AllPages the total counts the locally matched learners. For a single
// page the total is the provider's figure for the query, which can exceed the
// matches when the provider disagrees with the local segment rules.
func GetLearners(ctx context.Context, cfg *contract.Config, p contract.DataProvider) ([]schema.ClassifiedLearner, int, error) {
	classifier := NewClassifier(cfg)

	if cfg.AllPages {
		all, err := provider.FetchAllLearners(ctx, p, cfg.PageSize)
		if err != nil {
			return nil, 0, err
		}
		matched := classifier.Filter(all, cfg.Segment)
		return classifier.ClassifyAll(matched), len(matched), nil
	}

	page, err := p.FetchLearners(ctx, schema.LearnerQuery{
		Limit:   cfg.Limit,
		Offset:  cfg.Offset,
		Segment: cfg.Segment,
		Search:  cfg.Search,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetch learners: %w", err)
	}
	matched := classifier.Filter(page.Learners, cfg.Segment)
	if dropped := len(page.Learners) - len(matched); dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"segment":  cfg.Segment,
			"dropped":  dropped,
			"returned": len(page.Learners),
		}).Warn("Provider returned learners outside the segment; total is the provider's count")
	}
	return classifier.ClassifyAll(matched), page.Total, nil
}

// logDashboardHeader prints a concise header to stderr.
func logDashboardHeader(ctx context.Context, cfg *contract.Config) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "🔎 Provider: %s\n", cfg.ProviderURL)
	fmt.Fprintf(os.Stderr, "📅 As of: %s\n", cfg.Now().Format(contract.DateTimeFormat))
}

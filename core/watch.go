package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/outwriter"
	"github.com/skillpulse/skillpulse/internal/provider"
	"github.com/skillpulse/skillpulse/schema"
)

// refreshEndpoints are invalidated before every refresh after the first.
var refreshEndpoints = []schema.Endpoint{
	schema.MetricsEndpoint,
	schema.JourneyEndpoint,
	schema.ImpactEndpoint,
	schema.SegmentCountsEndpoint,
}

// Refresher recomputes the dashboard under last-request-wins.
// A refresh that starts while another is in flight cancels the older one,
// and the older result is discarded.
type Refresher struct {
	cfg      *contract.Config
	provider contract.DataProvider
	mgr      contract.CacheManager
	latest   provider.Latest
	runs     atomic.Int64
}

// NewRefresher creates a refresher for the provider.
func NewRefresher(cfg *contract.Config, p contract.DataProvider, mgr contract.CacheManager) *Refresher {
	return &Refresher{cfg: cfg, provider: p, mgr: mgr}
}

// Refresh computes a fresh dashboard. It returns provider.ErrSuperseded when
// a newer refresh started before this one finished.
func (r *Refresher) Refresh(ctx context.Context) (*schema.DashboardResult, error) {
	first := r.runs.Add(1) == 1
	if cached, ok := r.provider.(*CachedProvider); ok && !first {
		if _, err := cached.Invalidate(refreshEndpoints...); err != nil {
			contract.LogWarn("Cache invalidation before refresh failed", err)
		}
	}
	return provider.Do(ctx, &r.latest, func(ctx context.Context) (*schema.DashboardResult, error) {
		return GetDashboardResults(ctx, r.cfg, r.provider, r.mgr)
	})
}

// Run refreshes immediately and then on every tick until ctx is done.
// Failed refreshes are logged and the loop continues.
func (r *Refresher) Run(ctx context.Context, interval time.Duration, onResult func(*schema.DashboardResult, time.Duration) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		result, err := r.Refresh(ctx)
		switch {
		case err == nil:
			if err := onResult(result, time.Since(start)); err != nil {
				return err
			}
		case errors.Is(err, provider.ErrSuperseded):
			logrus.Debug("refresh superseded")
		case ctx.Err() != nil:
			return nil
		default:
			contract.LogWarn("Refresh failed", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runWatch prints the summary on every refresh until interrupted.
func runWatch(ctx context.Context, cfg *contract.Config, p contract.DataProvider, mgr contract.CacheManager) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logDashboardHeader(ctx, cfg)
	fmt.Fprintf(os.Stderr, "⏱️  Refreshing every %s (Ctrl-C to stop)\n", cfg.Watch)

	ctx = WithSuppressHeader(ctx)
	return NewRefresher(cfg, p, mgr).Run(ctx, cfg.Watch, func(result *schema.DashboardResult, d time.Duration) error {
		return outwriter.PrintSummary(result, cfg, d)
	})
}

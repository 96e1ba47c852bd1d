package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// ErrCheckFailed is returned when the ROI score is below the minimum.
var ErrCheckFailed = errors.New("policy check failed")

// ExecuteCheck runs the check command for CI/CD gating.
// It computes the dashboard and returns ErrCheckFailed when the score is below cfg.MinScore.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	p, err := NewDataProvider(cfg, mgr)
	if err != nil {
		return err
	}
	result, err := GetDashboardResults(ctx, cfg, p, mgr)
	if err != nil {
		return err
	}

	check := BuildCheckResult(result, cfg.MinScore)
	printCheckResult(os.Stdout, cfg, check, time.Since(start))

	if !check.Passed {
		return fmt.Errorf("%w: score %d is below minimum %.0f", ErrCheckFailed, check.Score, check.MinScore)
	}
	return nil
}

// BuildCheckResult evaluates a dashboard against the minimum score.
func BuildCheckResult(result *schema.DashboardResult, minScore float64) *schema.CheckResult {
	return &schema.CheckResult{
		Passed:       float64(result.ROI.Score) >= minScore,
		Score:        result.ROI.Score,
		Grade:        result.ROI.Grade,
		MinScore:     minScore,
		HighInsights: FilterInsights(result.Insights, schema.PriorityHigh),
		Metrics:      result.Metrics,
	}
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, cfg *contract.Config, result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(w, cfg, result, duration)

	if result.Passed {
		printCheckSuccess(w, result)
	} else {
		printCheckFailure(w, result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, cfg *contract.Config, result *schema.CheckResult, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Policy Check Results:")

	// Define labels and values for dynamic padding
	labels := []string{"Provider:", "As of:", "Minimum:"}
	values := []any{
		cfg.ProviderURL,
		cfg.Now().Format(contract.DateTimeFormat),
		fmt.Sprintf("%.0f", result.MinScore),
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		if len(label) > maxLabelLen {
			maxLabelLen = len(label)
		}
	}

	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Checked %d learners in %v\n\n", result.Metrics.TotalLearners, duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "✅ ROI score %d (%s) meets the minimum of %.0f\n", result.Score, result.Grade, result.MinScore)
	printCheckRates(w, result)
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "❌ ROI score %d (%s) is below the minimum of %.0f\n", result.Score, result.Grade, result.MinScore)
	printCheckRates(w, result)

	if len(result.HighInsights) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\nHigh priority insights (%d):\n", len(result.HighInsights))
	for _, in := range result.HighInsights {
		_, _ = fmt.Fprintf(w, "  - %s (%s): %s\n", in.Title, in.Metric, in.Action)
	}
}

// printCheckRates prints the rates that feed the score.
func printCheckRates(w io.Writer, result *schema.CheckResult) {
	m := result.Metrics
	_, _ = fmt.Fprintf(w, "  cert_rate=%.1f%%, pass_rate=%.1f%%, no_show_rate=%.1f%%\n", m.CertRate, m.PassRate, m.NoShowRate)
}

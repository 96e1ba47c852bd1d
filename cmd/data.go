package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
)

// summaryCmd computes the full program dashboard.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show program metrics, the ROI score, top insights and segment counts.",
	Long: `Fetch the provider's metrics, journey and impact data and derive the program dashboard.

Computes:
- Certification, pass and no-show rates
- The weighted ROI score and its letter grade
- Prioritized insights from the current benchmarks
- Journey funnel conversions and the highest drop-off
- Learner counts for every behavioral segment

Examples:
  # One-off summary
  skillpulse summary --provider-url https://learning.example.com/api

  # Refresh every five minutes until interrupted
  skillpulse summary --watch 5m

  # Spreadsheet for the quarterly review
  skillpulse summary --output xlsx --output-file q3.xlsx`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute summary", err)
		}
	},
}

// insightsCmd lists generated insights.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List prioritized insights derived from the current program data.",
	Long: `Evaluate every insight rule against the current program data.

Rules fire on low certification or pass rates, high no-show rates, Copilot adoption
and the largest funnel drop-off. Thresholds come from the "thresholds" block of
.skillpulse.yaml when present.

Examples:
  # Only what needs attention now
  skillpulse insights --priority high

  # Export for a tracking sheet
  skillpulse insights --output csv --output-file insights.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInsights(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot generate insights", err)
		}
	},
}

// segmentsCmd counts segment membership.
var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Count learners in each behavioral segment.",
	Long: `Count learners in each segment across the full population.

Counts come from the provider when it publishes them. Otherwise every learner page
is fetched and classified locally. A learner may belong to several segments.

Examples:
  skillpulse segments
  skillpulse segments --as-of 2024-06-01 --inactive-days 60`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSegments(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot count segments", err)
		}
	},
}

// funnelCmd computes journey conversions.
var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Show journey funnel stages, conversions and the highest drop-off.",
	Long: `Compute each journey stage's share of the first stage and the conversion between
consecutive stages. The transition with the highest drop-off is highlighted.

Examples:
  skillpulse funnel
  skillpulse funnel --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFunnel(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute funnel", err)
		}
	},
}

// learnersCmd lists learners with segment tags.
var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "List learners with their segment membership.",
	Long: `List learners from the provider and tag each with every segment it belongs to.

A single page is requested by default. Use --all to walk every page.

Examples:
  # Learners who need support
  skillpulse learners --segment at_risk --limit 50

  # Everyone, for an offline analysis
  skillpulse learners --all --output parquet --output-file learners.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLearners(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list learners", err)
		}
	},
}

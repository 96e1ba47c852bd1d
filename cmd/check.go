package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fail when the program ROI score is below a minimum (for CI/CD)",
	Long: `Compute the program dashboard and exit non-zero when the ROI score is below the minimum.

Default minimum: 60 (grade C), or thresholds.min_score from .skillpulse.yaml

Use cases:
- Scheduled health checks of a learning program
- Release gates for content changes
- Alerting on regressions in certification outcomes

Examples:
  # Use the default minimum
  skillpulse check

  # Require at least a B
  skillpulse check --min-score 70`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}

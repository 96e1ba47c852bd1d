package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
)

// metricsCmd displays the formal definitions of the score, rates and insight rules.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the ROI formula, grade bands, rate formulas and insight rules",
	Long: `Show the ROI score formula with its weights, the grade bands, how each rate is
derived and the condition behind every insight rule.

Custom weights and thresholds from .skillpulse.yaml are reflected.
The provider is not contacted.

Examples:
  skillpulse metrics
  skillpulse metrics --config .skillpulse.yaml --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetricsDefinitions(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}

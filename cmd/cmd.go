// Package cmd defines the command-line interface for skillpulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(funnelCmd)
	rootCmd.AddCommand(learnersCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(snapshotCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("provider-url", "", "Base URL of the learner data provider")
	rootCmd.PersistentFlags().String("provider-fallback-url", "", "Fallback provider URL tried when the primary fails")
	rootCmd.PersistentFlags().String("provider-timeout", contract.DefaultProviderTimeout.String(), "Timeout for each provider request")
	rootCmd.PersistentFlags().Int("provider-retries", contract.DefaultProviderRetries, "Retries for failed provider requests")
	rootCmd.PersistentFlags().Int("page-size", contract.DefaultPageSize, "Learners requested per page")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "Freshness window for cached aggregate responses")
	rootCmd.PersistentFlags().String("learners-ttl", contract.DefaultLearnersTTL.String(), "Freshness window for cached learner pages")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("as-of", "", "Evaluation date for inactivity (RFC3339 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().Int("inactive-days", contract.DefaultInactiveDays, "Days without activity before a learner counts as inactive")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string for mysql/postgresql/redis (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("snapshot-backend", "", "Snapshot history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("snapshot-db-connect", "", "Connection string for snapshot history (SQLite path or mysql/postgresql DSN)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of learnersCmd to Viper
	learnersCmd.Flags().String("segment", string(schema.SegmentAll), "Segment: all or at_risk or rising_star or ready_to_advance or inactive or high_value")
	learnersCmd.Flags().String("search", "", "Free-text search on handle or email")
	learnersCmd.Flags().IntP("limit", "l", contract.DefaultResultLimit, "Number of learners to display")
	learnersCmd.Flags().Int("offset", 0, "Number of learners to skip")
	learnersCmd.Flags().Bool("all", false, "Fetch every page instead of a single page")
	if err := viper.BindPFlags(learnersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding learners flags", err)
	}

	// Bind all flags of insightsCmd to Viper
	insightsCmd.Flags().String("priority", "", "Only show insights of this priority: high or medium or low or success")
	if err := viper.BindPFlags(insightsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding insights flags", err)
	}

	// Bind all flags of summaryCmd to Viper
	summaryCmd.Flags().String("watch", "", "Refresh interval (e.g., 30s, 5m); runs until interrupted")
	if err := viper.BindPFlags(summaryCmd.Flags()); err != nil {
		contract.LogFatal("Error binding summary flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("min-score", 0, "Minimum ROI score for the check to pass (default from thresholds.min_score or 60)")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}

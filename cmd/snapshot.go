package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/iocache"
	"github.com/skillpulse/skillpulse/schema"
)

// snapshotBackendFromConfig reads and validates the snapshot backend settings.
// An empty backend means snapshots are disabled.
func snapshotBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if b := viper.GetString("snapshot-backend"); b != "" {
		backend = schema.DatabaseBackend(b)
	}
	connStr := viper.GetString("snapshot-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// snapshotSetup loads minimal configuration needed for snapshot operations.
func snapshotSetup() error {
	backend, connStr, err := snapshotBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no response cache for snapshot commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshots: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotMigrateSetup loads configuration for migrations without opening the store,
// so migrations can run on a fresh database.
func snapshotMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := snapshotBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetSnapshotDBFilePath()
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotCmd focused on dashboard history management.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage dashboard snapshot history and exports",
	Long: `Manage the history of computed dashboards used for trend tracking.

When a snapshot backend is configured, every dashboard computation stores:
- Run metadata (timestamp, configuration, duration)
- The headline metrics, ROI score and grade
- Every generated insight

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show snapshot statistics
  export  - Export history to Parquet
  clear   - Remove all snapshot history
  migrate - Run database schema migrations

Examples:
  # Track every run in a local SQLite file
  SKILLPULSE_SNAPSHOT_BACKEND=sqlite skillpulse summary

  # Export for analysis in pandas/DuckDB
  skillpulse snapshot export --output-file history.parquet`,
}

// snapshotClearCmd clears the snapshot history.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all dashboard snapshot history",
	Long: `Delete every stored snapshot and its insights.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  skillpulse snapshot export --output-file backup.parquet
  skillpulse snapshot clear`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := contract.GetSnapshotDBFilePath()
		if cfg.SnapshotBackend == schema.SQLiteBackend && cfg.SnapshotDBConnect != "" {
			dbFilePath = cfg.SnapshotDBConnect
		}
		iocache.CloseCaching()
		if err := iocache.ClearSnapshots(cfg.SnapshotBackend, dbFilePath, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshot data", err)
		}
		fmt.Println("Snapshot data cleared successfully.")
	},
}

// snapshotStatusCmd shows snapshot status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show how many snapshots are stored, their time range and table sizes.

Examples:
  skillpulse snapshot status`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetSnapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get snapshot status", errors.New("snapshot tracking is disabled; set --snapshot-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintSnapshotStatus(os.Stdout, status)
	},
}

// snapshotExportCmd exports snapshot history to Parquet files.
var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshot history to Parquet for BI tools",
	Long: `Export stored snapshots and their insights as two Parquet files.

Requires: --output-file parameter

Examples:
  skillpulse snapshot export --output-file history.parquet
  duckdb -c "SELECT * FROM read_parquet('history.snapshots.parquet') LIMIT 10"`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteSnapshotExport(iocache.Manager.GetSnapshotStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export snapshot data", err)
		}
	},
}

// snapshotMigrateCmd runs database migrations for the snapshot store.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run snapshot schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  skillpulse snapshot migrate

  # Rollback to initial state
  skillpulse snapshot migrate --target-version 0`,
	PreRunE: snapshotMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillpulse/skillpulse/core"
	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/internal/iocache"
	"github.com/skillpulse/skillpulse/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no snapshot tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: status and clear use minimal initialization (cacheSetup) instead of
// the full sharedSetup, so they work without a provider URL.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the provider response cache",
	Long: `Manage the cache of provider responses that keeps repeated runs fast and gentle on the provider.

Aggregate endpoints are cached for --cache-ttl and learner pages for --learners-ttl.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None (disabled)

Subcommands:
  status     - Show cache statistics and connection info
  clear      - Remove all cached responses
  invalidate - Remove cached responses for specific endpoints

Examples:
  # Check cache status
  skillpulse cache status

  # Force fresh metrics on the next run
  skillpulse cache invalidate metrics journey`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached provider responses",
	Long: `Delete all cached provider responses from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every key under the cache prefix

Examples:
  # Clear SQLite cache (default)
  skillpulse cache clear

  # Clear a shared Redis cache
  SKILLPULSE_CACHE_BACKEND=redis SKILLPULSE_CACHE_DB_CONNECT="redis://cache:6379/0" skillpulse cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := contract.GetCacheDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbFilePath = cfg.CacheDBConnect
		}
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, dbFilePath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the provider response cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  skillpulse cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResponseStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("response cache is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheInvalidateCmd drops cached responses for selected endpoints.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate [endpoint...]",
	Short: "Remove cached responses for specific provider endpoints",
	Long: `Remove cached responses for the named endpoints, or all endpoints when none are named.

Endpoints: metrics, journey, impact, enriched-learners, segment-counts

Cache keys include the provider URL, so this needs the same --provider-url as the runs
that filled the cache.

Examples:
  skillpulse cache invalidate
  skillpulse cache invalidate enriched-learners segment-counts`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		removed, err := core.InvalidateCache(cfg, cacheManager, args)
		if err != nil {
			contract.LogFatal("Failed to invalidate cache", err)
		}
		fmt.Printf("Removed %d cached responses.\n", removed)
	},
}

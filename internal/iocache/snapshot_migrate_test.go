package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/schema"
)

func TestMigrateSnapshots_UnsupportedBackends(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.NoneBackend, schema.RedisBackend} {
		err := MigrateSnapshots(backend, "", -1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migrations are not supported")
	}
}

func TestMigrateSnapshots_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Latest, then again as a no-op
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))
	assert.ElementsMatch(t, snapshotTables, listSQLiteTables(t, dbPath, "skillpulse_snapshot"))

	// Step down to version 1 keeps only the snapshots table
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 1))
	assert.Equal(t, []string{snapshotsTable}, listSQLiteTables(t, dbPath, "skillpulse_snapshot"))

	// Roll back everything, then up again
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 0))
	assert.Empty(t, listSQLiteTables(t, dbPath, "skillpulse_snapshot"))
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, 2))
	assert.ElementsMatch(t, snapshotTables, listSQLiteTables(t, dbPath, "skillpulse_snapshot"))
}

func TestMigrateSnapshots_StoreCompatible(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrated.db")
	require.NoError(t, MigrateSnapshots(schema.SQLiteBackend, dbPath, -1))

	// The store opens cleanly on a migrated database
	store, err := NewSnapshotStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalSnapshots)
}

// listSQLiteTables returns the table names starting with prefix.
func listSQLiteTables(t *testing.T, path, prefix string) []string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ? ORDER BY name`, prefix+"%")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSkillpulseWithMySQL tests the skillpulse CLI with a MySQL backend.
func TestSkillpulseWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "skillpulse",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/skillpulse?parseTime=true", host, port.Port())
	runBackendScenario(t, []string{
		"SKILLPULSE_CACHE_BACKEND=mysql",
		"SKILLPULSE_CACHE_DB_CONNECT=" + connStr,
		"SKILLPULSE_SNAPSHOT_BACKEND=mysql",
		"SKILLPULSE_SNAPSHOT_DB_CONNECT=" + connStr,
	})
}

// TestSkillpulseWithPostgres tests the skillpulse CLI with a PostgreSQL backend.
func TestSkillpulseWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runBackendScenario(t, []string{
		"SKILLPULSE_CACHE_BACKEND=postgresql",
		"SKILLPULSE_CACHE_DB_CONNECT=" + connStr,
		"SKILLPULSE_SNAPSHOT_BACKEND=postgresql",
		"SKILLPULSE_SNAPSHOT_DB_CONNECT=" + connStr,
	})
}

// TestSkillpulseWithRedis tests the response cache on Redis with SQLite snapshots.
func TestSkillpulseWithRedis(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = redisC.Terminate(ctx) }()

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	runBackendScenario(t, []string{
		"SKILLPULSE_CACHE_BACKEND=redis",
		"SKILLPULSE_CACHE_DB_CONNECT=" + fmt.Sprintf("redis://%s:%s/0", host, port.Port()),
		"SKILLPULSE_SNAPSHOT_BACKEND=sqlite",
	})
}

// runBackendScenario clears both stores, computes a summary and reads back status.
func runBackendScenario(t *testing.T, backendEnv []string) {
	t.Helper()
	dir := t.TempDir()
	env := append([]string{
		"SKILLPULSE_PROVIDER_URL=" + startFakeProvider(t),
		"SKILLPULSE_COLOR=no",
	}, backendEnv...)

	_, err := runCommand(t, dir, env, "cache", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, dir, env, "snapshot", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, dir, env, "summary", "--output", "json")
	require.NoError(t, err)

	out, err := runCommand(t, dir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	out, err = runCommand(t, dir, env, "snapshot", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Snapshots: 1")

	out, err = runCommand(t, dir, env, "cache", "invalidate", "metrics")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

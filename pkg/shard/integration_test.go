//go:build integration

package shard_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/hospital/seed"
	"github.com/marmos91/centromed/pkg/shard"
)

// postgresShard returns the connection settings of a PostgreSQL server for
// tests. POSTGRES_HOST selects an external server; otherwise a container is
// started and terminated on cleanup.
func postgresShard(t *testing.T) shard.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("POSTGRES_PORT"))
		if port == 0 {
			port = 5432
		}
		return shard.PostgresConfig{
			Host:     host,
			Port:     port,
			Database: envOr("POSTGRES_DB", "centromed_test"),
			User:     envOr("POSTGRES_USER", "centromed_test"),
			Password: envOr("POSTGRES_PASSWORD", "centromed_test"),
			SSLMode:  "disable",
		}
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("centromed_test"),
		postgres.WithUsername("centromed_test"),
		postgres.WithPassword("centromed_test"),
		testcontainers.WithWaitStrategyAndDeadline(3*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return shard.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "centromed_test",
		User:     "centromed_test",
		Password: "centromed_test",
		SSLMode:  "disable",
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestMixedBackendRegistry(t *testing.T) {
	ctx := context.Background()
	pg := postgresShard(t)

	cfgs := []shard.Config{
		{
			Key:         "central",
			CentroID:    1,
			Nombre:      "Centro Médico Central",
			AutoMigrate: true,
			Database: shard.DatabaseConfig{
				Type:   shard.DatabaseTypeSQLite,
				SQLite: shard.SQLiteConfig{Path: filepath.Join(t.TempDir(), "central.db")},
			},
		},
		{
			Key:         "guayaquil",
			CentroID:    2,
			Nombre:      "Centro Médico Guayaquil",
			AutoMigrate: true,
			Database: shard.DatabaseConfig{
				Type:     shard.DatabaseTypePostgres,
				Postgres: pg,
			},
		},
	}

	reg, err := shard.Open(ctx, cfgs, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	for _, h := range reg.Ping(ctx, 5*time.Second) {
		assert.True(t, h.Healthy, "shard %s: %s", h.Key, h.Error)
	}

	results := seed.Apply(ctx, reg, seed.Demo())
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err, r.ShardKey)
		assert.False(t, r.Skipped, r.ShardKey)
		assert.Positive(t, r.Rows, r.ShardKey)
	}

	// A second run finds data and leaves both shards alone.
	for _, r := range seed.Apply(ctx, reg, seed.Demo()) {
		assert.True(t, r.Skipped, r.ShardKey)
	}

	exec := fanout.NewExecutor(5*time.Second, nil)
	res, err := fanout.Keys(ctx, exec, reg.List(), "pacientes")
	require.NoError(t, err)
	assert.Zero(t, res.Failed())
	require.Len(t, res.Parts, 2)
	assert.Equal(t, "central", res.Parts[0].Shard.Key)
	assert.Equal(t, "guayaquil", res.Parts[1].Shard.Key)
	assert.Len(t, res.Parts[0].Rows, len(seed.Demo()["central"].Pacientes))
	assert.Len(t, res.Parts[1].Rows, len(seed.Demo()["guayaquil"].Pacientes))
	assert.IsIncreasing(t, res.Parts[1].Rows)
}

// Package shardtest builds file-backed SQLite shard registries for tests.
package shardtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marmos91/centromed/pkg/shard"
)

// Centro names one test shard.
type Centro struct {
	Key      string
	CentroID int64
	Nombre   string
}

// Centros returns the three default centros in registry order.
func Centros() []Centro {
	return []Centro{
		{Key: "central", CentroID: 1, Nombre: "Centro Médico Central"},
		{Key: "guayaquil", CentroID: 2, Nombre: "Centro Médico Guayaquil"},
		{Key: "cuenca", CentroID: 3, Nombre: "Centro Médico Cuenca"},
	}
}

// NewRegistry opens one SQLite database per centro under t.TempDir() and
// creates the given models on each. The registry is closed on cleanup.
func NewRegistry(t testing.TB, models []any, centros ...Centro) *shard.Registry {
	t.Helper()
	if len(centros) == 0 {
		centros = Centros()
	}

	dir := t.TempDir()
	cfgs := make([]shard.Config, len(centros))
	for i, c := range centros {
		cfgs[i] = shard.Config{
			Key:         c.Key,
			CentroID:    c.CentroID,
			Nombre:      c.Nombre,
			AutoMigrate: true,
			Database: shard.DatabaseConfig{
				Type:         shard.DatabaseTypeSQLite,
				SQLite:       shard.SQLiteConfig{Path: filepath.Join(dir, c.Key+".db")},
				MaxOpenConns: 1,
			},
		}
	}

	reg, err := shard.Open(context.Background(), cfgs, models...)
	if err != nil {
		t.Fatalf("open test shards: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

// Break closes the shard's connection pool so every later query on it fails.
func Break(t testing.TB, s *shard.Shard) {
	t.Helper()
	sqlDB, err := s.DB().DB()
	if err != nil {
		t.Fatalf("break shard %s: %v", s.Key, err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("break shard %s: %v", s.Key, err)
	}
}

// MustGet returns the shard with key or fails the test.
func MustGet(t testing.TB, reg *shard.Registry, key string) *shard.Shard {
	t.Helper()
	s, err := reg.Get(key)
	if err != nil {
		t.Fatalf("get shard %s: %v", key, err)
	}
	return s
}

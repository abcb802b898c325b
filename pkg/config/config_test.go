package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/centromed/internal/bytesize"
	"github.com/marmos91/centromed/pkg/shard"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoad_ShardsInOrder(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "INFO"

shards:
  - key: central
    centro_id: 1
    nombre: "Centro Médico Central"
    database:
      type: SQLite
      sqlite:
        path: "`+yamlSafePath(tmpDir)+`/central.db"
  - key: guayaquil
    centro_id: 2
    database:
      type: postgres
      postgres:
        host: db.gye.local
        database: centro
        user: centromed

fanout:
  query_timeout: 2s

api:
  port: 8080
  max_body_size: 256Ki
  jwt:
    secret: "test-secret-key-for-testing-minimum-32-chars"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.Shards) != 2 {
		t.Fatalf("Expected 2 shards, got %d", len(cfg.Shards))
	}
	if cfg.Shards[0].Key != "central" || cfg.Shards[1].Key != "guayaquil" {
		t.Errorf("Shard order not preserved: %s, %s", cfg.Shards[0].Key, cfg.Shards[1].Key)
	}
	if cfg.Shards[0].Database.Type != shard.DatabaseTypeSQLite {
		t.Errorf("Expected database type to be normalized to sqlite, got %q", cfg.Shards[0].Database.Type)
	}
	if cfg.Shards[1].Nombre != "guayaquil" {
		t.Errorf("Expected nombre to default to the key, got %q", cfg.Shards[1].Nombre)
	}
	if cfg.Shards[1].Database.Postgres.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Shards[1].Database.Postgres.Port)
	}
	if cfg.FanOut.QueryTimeout != 2*time.Second {
		t.Errorf("Expected query timeout 2s, got %v", cfg.FanOut.QueryTimeout)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.API.MaxBodySize != 256*bytesize.KiB {
		t.Errorf("Expected max_body_size 256Ki, got %v", cfg.API.MaxBodySize)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if len(cfg.Shards) != 1 || cfg.Shards[0].Key != "central" {
		t.Errorf("Expected the default central shard, got %+v", cfg.Shards)
	}
}

func TestLoad_NoShards(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: INFO
`)
	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected a config without shards to be rejected")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("CENTROMED_LOGGING_LEVEL", "ERROR")
	t.Setenv("CENTROMED_API_PORT", "9091")
	t.Setenv("CENTROMED_ADMIN_PASSWORD", "from-the-environment")

	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "INFO"

shards:
  - key: central
    centro_id: 1
    database:
      type: sqlite
      sqlite:
        path: "`+yamlSafePath(tmpDir)+`/central.db"

api:
  port: 8080
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.API.Port != 9091 {
		t.Errorf("Expected port 9091 from env var, got %d", cfg.API.Port)
	}
	if cfg.Admin.Password != "from-the-environment" {
		t.Errorf("Expected admin password from env var, got %q", cfg.Admin.Password)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.FanOut.QueryTimeout != DefaultFanOutTimeout {
		t.Errorf("Expected default fan-out timeout %v, got %v", DefaultFanOutTimeout, cfg.FanOut.QueryTimeout)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("Expected default admin username 'admin', got %q", cfg.Admin.Username)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
	if filepath.Base(GetConfigDir()) != "centromed" {
		t.Errorf("Expected directory name 'centromed', got %q", filepath.Base(GetConfigDir()))
	}
}

func TestSchema(t *testing.T) {
	schema, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	for _, field := range []string{`"shards"`, `"fanout"`, `"query_timeout"`, `"centro_id"`} {
		if !strings.Contains(string(schema), field) {
			t.Errorf("Schema is missing %s", field)
		}
	}
}

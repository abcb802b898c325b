package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/marmos91/centromed/pkg/shard"
)

const sampleHeader = `# Centro Médico Configuration File
#
# Shards are listed in registry order. Global identifiers are numbered
# shard by shard in this order, so reordering or inserting a shard
# renumbers every aggregated listing.
#
# Environment variables override file values with the CENTROMED_ prefix,
# e.g. CENTROMED_LOGGING_LEVEL=DEBUG or CENTROMED_API_SECRET=...
#
`

// InitConfig writes a sample configuration to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path. An existing file
// is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg, err := sampleConfig(filepath.Dir(path))
	if err != nil {
		return err
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(sampleHeader)
	buf.Write(body)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// sampleConfig is the default config with three SQLite centros stored next
// to the config file and a random development JWT secret.
func sampleConfig(dir string) (*Config, error) {
	cfg := GetDefaultConfig()

	cfg.Shards = []shard.Config{
		sqliteShard(dir, "central", 1, "Centro Médico Central"),
		sqliteShard(dir, "guayaquil", 2, "Centro Médico Guayaquil"),
		sqliteShard(dir, "cuenca", 3, "Centro Médico Cuenca"),
	}
	ApplyDefaults(cfg)

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	cfg.API.JWT.Secret = secret
	return cfg, nil
}

func sqliteShard(dir, key string, centroID int64, nombre string) shard.Config {
	return shard.Config{
		Key:         key,
		CentroID:    centroID,
		Nombre:      nombre,
		AutoMigrate: true,
		Database: shard.DatabaseConfig{
			Type:   shard.DatabaseTypeSQLite,
			SQLite: shard.SQLiteConfig{Path: filepath.Join(dir, "data", key+".db")},
		},
	}
}

// generateSecret returns 32 random bytes hex encoded.
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

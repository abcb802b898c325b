package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/config"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/shard"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads the configuration named by --config and initializes
// logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRegistry connects every configured centro. Shards with auto_migrate
// get their tables created.
func openRegistry(ctx context.Context, cfg *config.Config) (*shard.Registry, error) {
	reg, err := shard.Open(ctx, cfg.Shards, models.All()...)
	if err != nil {
		return nil, fmt.Errorf("failed to open shards: %w", err)
	}
	return reg, nil
}

// getConfigSource describes where the configuration came from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

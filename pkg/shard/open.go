package shard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/centromed/internal/logger"
)

// Open connects every configured shard and returns the registry. When a
// shard enables auto_migrate, migrateModels are created on it. On error all
// pools opened so far are closed.
func Open(ctx context.Context, cfgs []Config, migrateModels ...any) (*Registry, error) {
	shards := make([]*Shard, 0, len(cfgs))
	closeAll := func() {
		for _, s := range shards {
			if sqlDB, err := s.db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}

	for i := range cfgs {
		cfg := cfgs[i]
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			closeAll()
			return nil, err
		}

		db, err := openDB(&cfg.Database)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("shard %q: %w", cfg.Key, err)
		}
		s := NewShard(cfg.Key, cfg.CentroID, cfg.Nombre, db)
		s.Driver = cfg.Database.Type
		shards = append(shards, s)

		if cfg.AutoMigrate && len(migrateModels) > 0 {
			if err := db.WithContext(ctx).AutoMigrate(migrateModels...); err != nil {
				closeAll()
				return nil, fmt.Errorf("shard %q: auto-migrate: %w", cfg.Key, err)
			}
		}

		logger.Info("Shard registered",
			logger.KeyShard, cfg.Key,
			logger.KeyCentroID, cfg.CentroID,
			logger.KeyDriver, string(cfg.Database.Type))
	}

	r, err := New(shards...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return r, nil
}

func openDB(cfg *DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case DatabaseTypeMySQL:
		// Skip the version probe so an unreachable centro does not block startup.
		dialector = mysql.New(mysql.Config{DSN: cfg.MySQL.DSN(), SkipInitializeWithVersion: true})
	case DatabaseTypePostgres:
		dialector = postgres.Open(cfg.Postgres.DSN())
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(cfg.SQLite.DSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

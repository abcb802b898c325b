package config

import (
	"testing"
	"time"

	"github.com/marmos91/centromed/pkg/shard"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.API.ReadTimeout)
	}
	if cfg.API.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout 30s, got %v", cfg.API.RequestTimeout)
	}
	if cfg.API.JWT.AccessTokenDuration != 15*time.Minute {
		t.Errorf("Expected default access token duration 15m, got %v", cfg.API.JWT.AccessTokenDuration)
	}
}

func TestApplyDefaults_Shards(t *testing.T) {
	cfg := &Config{Shards: []shard.Config{
		{Key: "cuenca", CentroID: 3},
		{Key: "quito", CentroID: 4, Nombre: "Quito Norte", Database: shard.DatabaseConfig{Type: shard.DatabaseTypePostgres}},
	}}
	ApplyDefaults(cfg)

	if cfg.Shards[0].Database.Type != shard.DatabaseTypeMySQL {
		t.Errorf("Expected mysql as the default driver, got %q", cfg.Shards[0].Database.Type)
	}
	if cfg.Shards[0].Database.MySQL.Port != 3306 {
		t.Errorf("Expected default mysql port 3306, got %d", cfg.Shards[0].Database.MySQL.Port)
	}
	if cfg.Shards[0].Nombre != "cuenca" {
		t.Errorf("Expected nombre to default to the key, got %q", cfg.Shards[0].Nombre)
	}
	if cfg.Shards[1].Nombre != "Quito Norte" {
		t.Errorf("Expected explicit nombre to be preserved, got %q", cfg.Shards[1].Nombre)
	}
	if cfg.Shards[1].Database.Postgres.SSLMode != "disable" {
		t.Errorf("Expected default sslmode 'disable', got %q", cfg.Shards[1].Database.Postgres.SSLMode)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no metrics port while disabled, got %d", cfg.Metrics.Port)
	}

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/centromed.log",
		},
		ShutdownTimeout: 60 * time.Second,
		FanOut:          FanOutConfig{QueryTimeout: time.Second},
		Admin: AdminConfig{
			Username: "customadmin",
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "/var/log/centromed.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.FanOut.QueryTimeout != time.Second {
		t.Errorf("Expected explicit query timeout to be preserved, got %v", cfg.FanOut.QueryTimeout)
	}
	if cfg.Admin.Username != "customadmin" {
		t.Errorf("Expected explicit admin username to be preserved, got %q", cfg.Admin.Username)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

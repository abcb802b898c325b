package config

import (
	"strings"
	"time"

	"github.com/marmos91/centromed/pkg/shard"
)

// DefaultFanOutTimeout bounds each shard query when fanout.query_timeout
// is unset.
const DefaultFanOutTimeout = 5 * time.Second

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyShardDefaults(cfg.Shards)
	applyFanOutDefaults(&cfg.FanOut)
	applyMetricsDefaults(&cfg.Metrics)
	cfg.API.ApplyDefaults()
	applyAdminDefaults(&cfg.Admin)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyShardDefaults fills driver defaults per shard. A shard without a
// display name is named after its key.
func applyShardDefaults(shards []shard.Config) {
	for i := range shards {
		shards[i].ApplyDefaults()
		if shards[i].Nombre == "" {
			shards[i].Nombre = shards[i].Key
		}
	}
}

func applyFanOutDefaults(cfg *FanOutConfig) {
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultFanOutTimeout
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
}

// GetDefaultConfig returns a Config with all default values applied and a
// single SQLite centro, enough to start a development server.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Shards: []shard.Config{
			{
				Key:         "central",
				CentroID:    1,
				Nombre:      "Centro Médico Central",
				AutoMigrate: true,
				Database:    shard.DatabaseConfig{Type: shard.DatabaseTypeSQLite},
			},
		},
		Admin: AdminConfig{
			Username: "admin",
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/internal/telemetry"
	"github.com/marmos91/centromed/pkg/api"
	"github.com/marmos91/centromed/pkg/config"
	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/hospital/reports"
	"github.com/marmos91/centromed/pkg/hospital/seed"
	"github.com/marmos91/centromed/pkg/hospital/service"
	"github.com/marmos91/centromed/pkg/metrics"
	"github.com/marmos91/centromed/pkg/metrics/prometheus"
	"github.com/marmos91/centromed/pkg/resolver"
)

var (
	startSeed bool
	pidFile   string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the centromed server",
	Long: `Start the centromed server in the foreground.

The server connects every centro listed under "shards", then serves the
REST API until it receives SIGINT or SIGTERM. A centro that cannot be
reached at startup aborts the start; once running, an unreachable centro
only degrades reads.

Examples:
  # Start with the default config file
  centromed start

  # Start with a custom config file and demo data
  centromed start --config /etc/centromed/config.yaml --seed

  # Override settings from the environment
  CENTROMED_LOGGING_LEVEL=DEBUG centromed start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startSeed, "seed", false, "Load the demo dataset into empty centros before serving")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process id to this file while running")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "centromed",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "centromed",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	fmt.Println("Centro Médico - multi-centro clinical records server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}

	// Metrics must be initialized before any recorder is built.
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer, err = metrics.NewServer(cfg.Metrics.Port)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	reg, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Error("closing shards", logger.KeyError, err)
		}
	}()
	logger.Info("Shard registry ready", "shards", reg.Len(), "keys", reg.Keys())

	if startSeed {
		for _, res := range seed.Apply(ctx, reg, seed.Demo()) {
			if res.Err != nil {
				return fmt.Errorf("seeding shard %q: %w", res.ShardKey, res.Err)
			}
		}
	}

	admin, err := cfg.Admin.Bootstrap()
	if err != nil {
		return fmt.Errorf("invalid admin configuration: %w", err)
	}
	if admin == nil {
		logger.Warn("No bootstrap admin configured; only usuarios stored in the centros can log in")
	}

	res := resolver.New(reg)
	exec := fanout.NewExecutor(cfg.FanOut.QueryTimeout, prometheus.NewFanOutMetrics())
	catalog := service.NewCatalog(service.Deps{
		Resolver: res,
		Executor: exec,
		Metrics:  prometheus.NewMutationMetrics(),
	})

	apiServer, err := api.NewServer(cfg.API, api.Deps{
		Resolver: res,
		Catalog:  catalog,
		Reports:  reports.New(res, exec),
		Admin:    admin,
		Metrics:  prometheus.NewHTTPMetrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 2)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("Metrics server error", logger.KeyError, err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer done()
		if metricsServer != nil {
			_ = metricsServer.Stop(shutdownCtx)
		}
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("Server shutdown error", logger.KeyError, err)
				return err
			}
		case <-shutdownCtx.Done():
			return fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", logger.KeyError, err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

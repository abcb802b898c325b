package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/hospital/seed"
)

var (
	shardsOutput  string
	shardsTimeout time.Duration
)

var shardsCmd = &cobra.Command{
	Use:   "shards",
	Short: "Inspect and prepare the centro databases",
	Long: `Work directly on the configured centro databases without starting
the API server.

Subcommands:
  status   Ping every centro
  migrate  Create missing tables on every centro
  seed     Load the demo dataset into empty centros`,
}

var shardsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Ping every configured centro",
	RunE:  runShardsStatus,
}

var shardsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables on every centro",
	Long: `Create missing tables and indexes on every configured centro. Existing
tables are altered only by adding columns; no data is removed.`,
	RunE: runShardsMigrate,
}

var shardsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset",
	Long: `Insert the demo especialidades, medicos, pacientes, empleados and
consultas into the centros named central, guayaquil and cuenca. A centro that
already holds pacientes is skipped, so seeding twice is harmless.`,
	RunE: runShardsSeed,
}

func init() {
	shardsStatusCmd.Flags().StringVarP(&shardsOutput, "output", "o", "table", "Output format (table|json|yaml)")
	shardsStatusCmd.Flags().DurationVar(&shardsTimeout, "timeout", 5*time.Second, "Per-centro ping timeout")

	shardsCmd.AddCommand(shardsStatusCmd)
	shardsCmd.AddCommand(shardsMigrateCmd)
	shardsCmd.AddCommand(shardsSeedCmd)
}

func runShardsStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(shardsOutput)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reg, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	health := reg.Ping(ctx, shardsTimeout)
	printer := output.NewPrinter(cmd.OutOrStdout(), format)
	if printer.Structured() {
		return printer.Print(health)
	}

	table := output.NewTableData("Key", "Centro", "Nombre", "Driver", "Status", "Latency", "Error")
	down := 0
	for _, h := range health {
		status := "healthy"
		if !h.Healthy {
			status = "unhealthy"
			down++
		}
		table.AddRow(h.Key, fmt.Sprint(h.CentroID), h.Nombre, string(h.Driver), status,
			h.Latency.Round(time.Microsecond).String(), output.Cell(h.Error))
	}
	if err := printer.Print(table); err != nil {
		return err
	}
	if down > 0 {
		return fmt.Errorf("%d of %d centros unreachable", down, len(health))
	}
	return nil
}

func runShardsMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	reg, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	if err := reg.AutoMigrate(ctx, models.All()...); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d centros: %v\n", reg.Len(), reg.Keys())
	return nil
}

func runShardsSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	reg, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	if err := reg.AutoMigrate(ctx, models.All()...); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, res := range seed.Apply(ctx, reg, seed.Demo()) {
		switch {
		case res.Err != nil:
			failed++
			_, _ = fmt.Fprintf(out, "  %-12s failed: %v\n", res.ShardKey, res.Err)
		case res.Skipped:
			_, _ = fmt.Fprintf(out, "  %-12s already has data, skipped\n", res.ShardKey)
		default:
			_, _ = fmt.Fprintf(out, "  %-12s %d rows inserted\n", res.ShardKey, res.Rows)
		}
	}
	if failed > 0 {
		return fmt.Errorf("seeding failed on %d centros", failed)
	}
	return nil
}

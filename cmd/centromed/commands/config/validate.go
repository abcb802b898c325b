package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/pkg/config"
	"github.com/marmos91/centromed/pkg/shard"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the centromed configuration file.

Checks for syntax errors, missing required fields, duplicate centro keys
or ids, and invalid values. No database is contacted.

Examples:
  centromed config validate
  centromed config validate --config /etc/centromed/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := warningsFor(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.API.Port)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  Query timeout:   %s\n", cfg.FanOut.QueryTimeout)
	_, _ = fmt.Fprintf(out, "  Centros:         %d\n", len(cfg.Shards))
	for _, s := range cfg.Shards {
		_, _ = fmt.Fprintf(out, "    %-12s id=%d driver=%s\n", s.Key, s.CentroID, s.Database.Type)
	}
	return nil
}

// warningsFor lists settings that load fine but will hurt at runtime.
func warningsFor(cfg *config.Config) []string {
	var warnings []string
	if !cfg.API.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - the server will refuse to start")
	}
	if !cfg.Admin.Configured() {
		warnings = append(warnings, "No bootstrap admin - only usuarios stored in the centros can log in")
	}
	if cfg.Admin.Password != "" {
		warnings = append(warnings, "Admin password stored in plain text - prefer admin.password_hash or CENTROMED_ADMIN_PASSWORD")
	}
	for _, s := range cfg.Shards {
		if s.Database.Type == shard.DatabaseTypeSQLite && len(cfg.Shards) > 1 && !s.AutoMigrate {
			warnings = append(warnings, fmt.Sprintf("Centro %q uses SQLite without auto_migrate - run 'centromed shards migrate' first", s.Key))
		}
	}
	return warnings
}

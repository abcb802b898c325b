package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/pkg/config"
)

var (
	showOutput  string
	showSecrets bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective configuration: file values, environment
overrides and defaults merged. Secrets are masked unless --show-secrets is
given.

Examples:
  centromed config show
  centromed config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print secrets in clear text")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}
	if !showSecrets {
		cfg = cfg.Redacted()
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}

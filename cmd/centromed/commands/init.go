package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/pkg/api"
	"github.com/marmos91/centromed/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a sample configuration with three SQLite centros (central,
guayaquil, cuenca) and a random JWT secret.

By default the file is created at $XDG_CONFIG_HOME/centromed/config.yaml.
Use --config to choose another path.

Examples:
  centromed init
  centromed init --config ./centromed.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()

	var err error
	if configPath != "" {
		err = config.InitConfigToPath(configPath, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Point the shards at your centro databases (or keep the SQLite files for a trial)")
	_, _ = fmt.Fprintf(out, "  2. Set an admin password: export CENTROMED_ADMIN_PASSWORD=...\n")
	_, _ = fmt.Fprintf(out, "  3. Start the server: centromed start --config %s --seed\n", configPath)
	_, _ = fmt.Fprintln(out, "\nSecurity note:")
	_, _ = fmt.Fprintln(out, "  A random JWT secret has been generated for development use.")
	_, _ = fmt.Fprintf(out, "  For production use: export %s=$(openssl rand -hex 32)\n", api.EnvAPISecret)
	return nil
}

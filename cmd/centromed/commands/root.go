// Package commands implements the centromed server CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centromed/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "centromed",
	Short: "Centro Médico - multi-centro clinical records server",
	Long: `centromed serves the clinical records of several centros, each kept in
its own database, as one REST API. Lists aggregate every centro the caller
may see and number rows with dense global ids; writes always land on exactly
one centro, chosen with the X-Centro-Id header.

Use "centromed [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/centromed/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(shardsCmd)
	rootCmd.AddCommand(config.Cmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// Package commands implements the centroctl client CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	ctxcmd "github.com/marmos91/centromed/cmd/centroctl/commands/context"
	"github.com/marmos91/centromed/cmd/centroctl/commands/record"
	"github.com/marmos91/centromed/cmd/centroctl/commands/report"
	"github.com/marmos91/centromed/pkg/apiclient"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "centroctl",
	Short: "Centro Médico client",
	Long: `centroctl talks to a centromed server. It lists records aggregated
across every centro you can see, and creates, updates and deletes records
on exactly one centro.

Record ids shown by centroctl are global: they number the rows of every
visible centro in configuration order and can change when rows are added
or removed. Update and delete re-read the record first so a stale id is
rejected instead of hitting another row.

Use "centroctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.Centro, _ = cmd.Flags().GetString("centro")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides stored credential)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides stored credential)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().StringP("centro", "c", "", "Centro key or id sent as X-Centro-Id")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(centrosCmd)
	rootCmd.AddCommand(ctxcmd.Cmd)
	rootCmd.AddCommand(report.Cmd)
	for _, e := range apiclient.Entities() {
		rootCmd.AddCommand(record.NewCmd(e))
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

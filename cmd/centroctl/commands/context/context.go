// Package context implements context management subcommands for centroctl.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage the saved server contexts, one per server logged into.

Subcommands:
  list        List saved contexts
  use         Switch to another context
  set-centro  Set the default centro for creates
  delete      Delete a context`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(setCentroCmd)
	Cmd.AddCommand(deleteCmd)
}

// Package report implements the cross-centro report commands.
package report

import (
	"github.com/spf13/cobra"
)

// Cmd is the reports subcommand.
var Cmd = &cobra.Command{
	Use:     "reports",
	Aliases: []string{"report"},
	Short:   "Cross-centro reports",
	Long: `Reports aggregate every centro you can see. A centro that does not
answer is reported as failed and the others are still shown.

Subcommands:
  consultas  Consultas with paciente, medico and especialidad names
  resumen    Row counts per centro`,
}

func init() {
	Cmd.AddCommand(consultasCmd)
	Cmd.AddCommand(resumenCmd)
}

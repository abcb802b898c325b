package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
)

var centrosCmd = &cobra.Command{
	Use:   "centros",
	Short: "List the centros you can address",
	Long: `List the centros visible to the current user, in the order that
global ids are assigned. Any key or id shown can be passed to --centro.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		centros, err := client.ListCentros()
		if err != nil {
			return err
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}

		table := output.NewTableData("Key", "ID", "Nombre", "Driver")
		for _, c := range centros {
			table.AddRow(c.Key, fmt.Sprint(c.CentroID), c.Nombre, output.Cell(c.Driver))
		}
		return cmdutil.PrintOutput(p, centros, len(centros) == 0, "No centros visible.", table)
	},
}

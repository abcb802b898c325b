package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		me, err := client.Me()
		if err != nil {
			return err
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}
		if p.Structured() {
			return p.Print(me)
		}

		scope := "every centro"
		if me.Centro != "" {
			scope = fmt.Sprintf("%s (id %d)", me.Centro, me.CentroID)
		}
		return output.PrintKeyValues(p.Writer(), [][2]string{
			{"Username", me.Username},
			{"Role", me.Role},
			{"Admin", output.Cell(me.Admin)},
			{"Centros", scope},
		})
	},
}

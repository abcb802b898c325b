package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func newDeleteCmd(e apiclient.Entity) *cobra.Command {
	var (
		force        bool
		mappingToken string
	)
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s by global id", singular(e)),
		Long: fmt.Sprintf(`Delete a %s from the centro it lives on. The record is shown and
confirmed first. Deleting renumbers the global ids of later rows.`, singular(e)),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				return err
			}
			client, err := cmdutil.GetAuthenticatedClient()
			if err != nil {
				return err
			}

			what := fmt.Sprintf("%s %d", singular(e), id)
			token := mappingToken
			if token == "" {
				current, err := client.Get(e, id)
				if err != nil {
					return err
				}
				token = current.Meta.MappingToken
				what = describe(e, current.Data)
			}

			p, err := cmdutil.Printer()
			if err != nil {
				return err
			}
			return cmdutil.RunDeleteWithConfirmation(p, what, force, func() error {
				return staleHint(client.Delete(e, id, token))
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	cmd.Flags().StringVar(&mappingToken, "mapping-token", "", "Mapping token of the list the id came from")
	return cmd
}

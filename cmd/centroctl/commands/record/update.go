package record

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func newUpdateCmd(e apiclient.Entity) *cobra.Command {
	var (
		sets         []string
		file         string
		mappingToken string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s by global id", singular(e)),
		Long: fmt.Sprintf(`Update a %s in place on the centro it lives on. Only the given fields
change.

The record is read first and its mapping token sent with the update, so
the write is refused if ids were renumbered in between. Pass
--mapping-token with the token of an earlier list to check against that
list instead.`, singular(e)),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				return err
			}
			doc, err := cmdutil.ReadBody(file, os.Stdin)
			if err != nil {
				return err
			}
			fields, err := cmdutil.ParseFields(doc, sets)
			if err != nil {
				return err
			}

			client, err := cmdutil.GetAuthenticatedClient()
			if err != nil {
				return err
			}
			token := mappingToken
			if token == "" {
				current, err := client.Get(e, id)
				if err != nil {
					return err
				}
				token = current.Meta.MappingToken
			}

			item, err := client.Update(e, id, fields, token)
			if err != nil {
				return staleHint(err)
			}
			p, err := cmdutil.Printer()
			if err != nil {
				return err
			}
			cmdutil.PrintSuccess(p, fmt.Sprintf("Updated %s", describe(e, item.Data)))
			return PrintItem(p, item)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment key=value (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON body file, - for stdin")
	cmd.Flags().StringVar(&mappingToken, "mapping-token", "", "Mapping token of the list the id came from")
	return cmd
}

// staleHint explains a stale identifier error.
func staleHint(err error) error {
	if apiErr, ok := err.(*apiclient.APIError); ok && apiErr.IsStale() {
		return fmt.Errorf("%w\n\nIds changed since they were listed. List again and retry with the new id", err)
	}
	return err
}

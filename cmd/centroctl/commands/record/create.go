package record

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func newCreateCmd(e apiclient.Entity) *cobra.Command {
	var (
		sets []string
		file string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s on one centro", singular(e)),
		Long: fmt.Sprintf(`Create a %[1]s on exactly one centro: --centro, else the context's
default centro. Usuarios bound to a centro always create there.

Reference fields (id_paciente, id_medico, id_especialidad) take global ids
as shown by list, and must name rows of the same centro.

Examples:
  centroctl %[2]s create --centro guayaquil --set nombres=Ana --set apellidos=Vera
  centroctl %[2]s create --centro 2 --file %[1]s.json`, singular(e), e),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			item, err := client.WithCentro(cmdutil.CreateCentro()).Create(e, fields)
			if err != nil {
				if apiErr, ok := err.(*apiclient.APIError); ok && apiErr.IsMissingSelector() {
					return fmt.Errorf("%w\n\nChoose the centro with --centro <key|id> or 'centroctl context set-centro'", err)
				}
				return err
			}

			p, err := cmdutil.Printer()
			if err != nil {
				return err
			}
			cmdutil.PrintSuccess(p, fmt.Sprintf("Created %s", describe(e, item.Data)))
			return PrintItem(p, item)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment key=value (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON body file, - for stdin")
	return cmd
}

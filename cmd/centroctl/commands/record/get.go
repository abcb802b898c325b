package record

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func newGetCmd(e apiclient.Entity) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s by global id", singular(e)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseID(args[0])
			if err != nil {
				return err
			}
			client, err := cmdutil.GetAuthenticatedClient()
			if err != nil {
				return err
			}
			item, err := client.Get(e, id)
			if err != nil {
				return err
			}
			p, err := cmdutil.Printer()
			if err != nil {
				return err
			}
			return PrintItem(p, item)
		},
	}
}

// PrintItem prints one record as key/value lines: identifiers first, then
// fields alphabetically.
func PrintItem(p *output.Printer, item *apiclient.Item) error {
	if p.Structured() {
		return p.Print(item)
	}
	r := item.Data
	pairs := [][2]string{
		{"id", output.Cell(r["id"])},
		{"centro", fmt.Sprintf("%s (%s)", output.Cell(r["shard_key"]), output.Cell(r["centro_nombre"]))},
		{"local_id", output.Cell(r["local_id"])},
	}
	for _, f := range r.Fields() {
		pairs = append(pairs, [2]string{f, output.Cell(r[f])})
	}
	return output.PrintKeyValues(p.Writer(), pairs)
}

package record

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/internal/cli/timeutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

func newListCmd(e apiclient.Entity) *cobra.Command {
	var opts apiclient.ListOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %s across centros", e),
		Long: fmt.Sprintf(`List %s from every centro you can see. With --centro only that
centro is queried; ids stay the same as in the full list.

If some centro does not answer, the rows of the others are still shown and
a warning names the missing centros.`, e),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Desde, err = timeutil.ParseDay(opts.Desde, time.Now()); err != nil {
				return err
			}
			if opts.Hasta, err = timeutil.ParseDay(opts.Hasta, time.Now()); err != nil {
				return err
			}

			client, err := cmdutil.GetAuthenticatedClient()
			if err != nil {
				return err
			}
			page, err := client.List(e, opts)
			if err != nil {
				return err
			}
			p, err := cmdutil.Printer()
			if err != nil {
				return err
			}
			return PrintPage(p, e, page, Columns(e))
		},
	}
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Text search on names, cedula or motivo")
	if e == apiclient.Consultas {
		cmd.Flags().StringVar(&opts.Desde, "desde", "", "Only consultas on or after this day (YYYY-MM-DD, hoy, ayer)")
		cmd.Flags().StringVar(&opts.Hasta, "hasta", "", "Only consultas up to and including this day")
	}
	return cmd
}

// PrintPage prints a list response as a table with a summary line, or as
// JSON/YAML including its meta.
func PrintPage(p *output.Printer, e apiclient.Entity, page *apiclient.Page, cols []string) error {
	if p.Structured() {
		return p.Print(page)
	}

	rows := make([]map[string]any, len(page.Data))
	for i, r := range page.Data {
		rows[i] = r
	}
	if len(rows) == 0 {
		p.Printf("No %s found.\n", e)
	} else if err := p.Print(output.MapTable(cols, rows)); err != nil {
		return err
	}

	m := page.Meta
	p.Printf("\n%d %s from %d centros\n", m.Total, e, m.ShardsQueried)
	p.Partial(m.FailedShards)
	return nil
}

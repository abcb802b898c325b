package report

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/cmd/centroctl/commands/record"
	"github.com/marmos91/centromed/internal/cli/timeutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

var (
	consultasDesde string
	consultasHasta string
)

var consultasCmd = &cobra.Command{
	Use:   "consultas",
	Short: "Consultas joined with paciente, medico and especialidad",
	Long: `List consultas in a date range with the names of their paciente,
medico and especialidad. A day given as --hasta is included whole.

Examples:
  centroctl reports consultas --desde 2024-02-01 --hasta 2024-02-29
  centroctl reports consultas --desde hoy --centro cuenca`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desde, err := timeutil.ParseDay(consultasDesde, time.Now())
		if err != nil {
			return err
		}
		hasta, err := timeutil.ParseDay(consultasHasta, time.Now())
		if err != nil {
			return err
		}

		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		page, err := client.ConsultasReport(desde, hasta)
		if err != nil {
			return err
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}
		return record.PrintPage(p, apiclient.Consultas, page, []string{
			"id", "fecha", "paciente_nombres", "paciente_apellidos",
			"medico_apellidos", "especialidad", "motivo", "estado", "shard_key",
		})
	},
}

func init() {
	consultasCmd.Flags().StringVar(&consultasDesde, "desde", "", "First day (YYYY-MM-DD, RFC 3339, hoy, ayer, manana)")
	consultasCmd.Flags().StringVar(&consultasHasta, "hasta", "", "Last day, inclusive")
}

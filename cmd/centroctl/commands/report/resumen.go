package report

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/pkg/apiclient"
)

var resumenCmd = &cobra.Command{
	Use:   "resumen",
	Short: "Row counts per centro",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.GetAuthenticatedClient()
		if err != nil {
			return err
		}
		resumen, err := client.Resumen()
		if err != nil {
			return err
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}
		if p.Structured() {
			return p.Print(resumen)
		}
		if err := p.Print(resumenTable(resumen)); err != nil {
			return err
		}
		p.Partial(resumen.Meta.FailedShards)
		return nil
	},
}

func resumenTable(r *apiclient.Resumen) *output.TableData {
	t := output.NewTableData("Centro", "Status", "Pacientes", "Medicos", "Empleados", "Consultas", "Pendientes", "Latency")
	for _, c := range r.Centros {
		row := []string{fmt.Sprintf("%s (%d)", c.ShardKey, c.CentroID), c.Status}
		row = append(row, countCells(c.Counts)...)
		t.AddRow(append(row, fmt.Sprintf("%.1fms", c.LatencyMs))...)
	}
	totals := append([]string{"TOTAL", ""}, countCells(&r.Totals)...)
	t.AddRow(append(totals, "")...)
	return t
}

func countCells(c *apiclient.Counts) []string {
	if c == nil {
		return []string{"-", "-", "-", "-", "-"}
	}
	return []string{
		fmt.Sprint(c.Pacientes),
		fmt.Sprint(c.Medicos),
		fmt.Sprint(c.Empleados),
		fmt.Sprint(c.Consultas),
		fmt.Sprint(c.ConsultasPendientes),
	}
}

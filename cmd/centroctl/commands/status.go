package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/internal/cli/timeutil"
	"github.com/marmos91/centromed/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and centro health",
	Long: `Check that the server answers and ping every centro through it. No
login is needed. Exits with an error when any centro is unreachable.`,
	RunE: runStatus,
}

type statusReport struct {
	Server  *apiclient.ServerHealth `json:"server"`
	Centros []apiclient.ShardHealth `json:"centros"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	url, err := cmdutil.ServerURL()
	if err != nil {
		return err
	}
	client := apiclient.New(url)

	server, err := client.Health()
	if err != nil {
		return fmt.Errorf("server %s is not responding: %w", url, err)
	}
	centros, err := client.ShardsHealth()
	if err != nil {
		return err
	}

	p, err := cmdutil.Printer()
	if err != nil {
		return err
	}
	if p.Structured() {
		return p.Print(statusReport{Server: server, Centros: centros})
	}

	p.Printf("Server:  %s (%s)\n", url, server.Service)
	p.Printf("Uptime:  %s\n\n", timeutil.FormatUptime(server.Uptime))

	table := output.NewTableData("Centro", "ID", "Nombre", "Driver", "Status", "Latency", "Error")
	var down []string
	for _, c := range centros {
		if c.Status != "healthy" {
			down = append(down, c.Key)
		}
		table.AddRow(c.Key, fmt.Sprint(c.CentroID), c.Nombre, output.Cell(c.Driver), c.Status, c.Latency, output.Cell(c.Error))
	}
	if err := p.Print(table); err != nil {
		return err
	}
	if len(down) > 0 {
		p.Partial(down)
		return fmt.Errorf("%d of %d centros unreachable", len(down), len(centros))
	}
	return nil
}

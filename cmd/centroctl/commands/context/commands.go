package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/credentials"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/internal/cli/prompt"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}

		type row struct {
			Name     string `json:"name"`
			Current  bool   `json:"current"`
			Server   string `json:"server"`
			Username string `json:"username,omitempty"`
			Home     string `json:"home,omitempty"`
			Centro   string `json:"centro,omitempty"`
			LoggedIn bool   `json:"logged_in"`
		}
		var rows []row
		table := output.NewTableData("", "Name", "Server", "User", "Home", "Default centro", "Session")
		for _, name := range store.Names() {
			c, _ := store.Get(name)
			r := row{
				Name: name, Current: name == store.CurrentName(), Server: c.ServerURL,
				Username: c.Username, Home: c.Home, Centro: c.Centro, LoggedIn: c.LoggedIn(),
			}
			rows = append(rows, r)

			mark, session := "", "logged out"
			if r.Current {
				mark = "*"
			}
			if r.LoggedIn {
				session = "active"
			}
			table.AddRow(mark, name, c.ServerURL, output.Cell(c.Username), output.Cell(c.Home), output.Cell(c.Centro), session)
		}
		return cmdutil.PrintOutput(p, rows, len(rows) == 0, "No contexts. Run 'centroctl login --server <url>'.", table)
	},
}

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to another context",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			names := store.Names()
			idx, err := prompt.Select("Context", names)
			if err != nil {
				return cmdutil.HandleAbort(err)
			}
			name = names[idx]
		}
		if err := store.Use(name); err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", name)
		return nil
	},
}

var setCentroCmd = &cobra.Command{
	Use:   "set-centro [centro]",
	Short: "Set the default centro for creates",
	Long: `Set the centro that creates go to when --centro is not given. Without
an argument, pick from the centros the server reports. Pass "" to clear.

Usuarios bound to one centro do not need this: their creates always go to
their own centro.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}

		var selector string
		if len(args) == 1 {
			selector = args[0]
		} else {
			client, err := cmdutil.GetAuthenticatedClient()
			if err != nil {
				return err
			}
			centros, err := client.ListCentros()
			if err != nil {
				return err
			}
			labels := make([]string, len(centros))
			for i, c := range centros {
				labels[i] = fmt.Sprintf("%s (%d) %s", c.Key, c.CentroID, c.Nombre)
			}
			idx, err := prompt.Select("Default centro", labels)
			if err != nil {
				return cmdutil.HandleAbort(err)
			}
			selector = centros[idx].Key
		}

		if err := store.SetCentro(selector); err != nil {
			return err
		}
		if selector == "" {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Default centro cleared")
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Creates now go to centro %q\n", selector)
		return nil
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore()
		if err != nil {
			return err
		}
		if _, err := store.Get(args[0]); err != nil {
			return fmt.Errorf("context %q: %w", args[0], err)
		}
		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}
		return cmdutil.RunDeleteWithConfirmation(p, fmt.Sprintf("context %q", args[0]), deleteForce, func() error {
			return store.Delete(args[0])
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

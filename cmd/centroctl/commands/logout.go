package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/internal/cli/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Long: `Drop the tokens of the current context. The server URL and username
are kept so 'centroctl login' can reuse them. Tokens are not revoked on the
server; they expire on their own.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	name := store.CurrentName()
	if name == "" {
		return fmt.Errorf("not logged in - no current context")
	}
	if err := store.Logout(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged out from context: %s\n", name)
	return nil
}

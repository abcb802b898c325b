package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/centromed/cmd/centroctl/cmdutil"
	"github.com/marmos91/centromed/internal/cli/credentials"
	"github.com/marmos91/centromed/internal/cli/prompt"
	"github.com/marmos91/centromed/pkg/apiclient"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a centromed server",
	Long: `Authenticate with a centromed server and store the tokens.

On first login the server URL is required. Later logins reuse the URL of
the current context unless --server is given.

Examples:
  # First login
  centroctl login --server http://localhost:8080 --username admin

  # Re-login to the stored server
  centroctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	current, _ := store.Current()

	serverURL := cmdutil.Flags.ServerURL
	if serverURL == "" {
		if current == nil || current.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  centroctl login --server http://localhost:8080")
		}
		serverURL = current.ServerURL
	}
	serverURL, err = normalizeURL(serverURL)
	if err != nil {
		return err
	}

	username := loginUsername
	if username == "" {
		def := ""
		if current != nil {
			def = current.Username
		}
		if def != "" {
			username, err = prompt.Input("Username", def)
		} else {
			username, err = prompt.InputRequired("Username")
		}
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := loginPassword
	if password == "" {
		if password, err = prompt.Password("Password"); err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	fmt.Printf("Logging in to %s as %s...\n", serverURL, username)
	tokens, err := apiclient.New(serverURL).Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	name := store.CurrentName()
	if name == "" || (current != nil && current.ServerURL != serverURL) {
		name = credentials.ContextName(serverURL)
	}
	ctx := &credentials.Context{
		ServerURL:    serverURL,
		Username:     tokens.User.Username,
		Role:         tokens.User.Role,
		Home:         tokens.User.Home,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}
	if prev, err := store.Get(name); err == nil && tokens.User.Home == "" {
		ctx.Centro = prev.Centro
	}
	if err := store.Save(name, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", ctx.Username, ctx.Role)
	if ctx.Home != "" {
		fmt.Printf("Bound to centro: %s\n", ctx.Home)
	} else {
		fmt.Println("Access: every centro")
	}
	fmt.Printf("Context: %s\n", name)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())
	return nil
}

// normalizeURL adds a missing http scheme and drops a trailing slash.
func normalizeURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	u.Path = ""
	return u.String(), nil
}

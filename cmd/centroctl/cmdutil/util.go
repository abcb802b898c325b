// Package cmdutil holds what centroctl subcommands share: global flags,
// the authenticated client and output helpers.
package cmdutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/marmos91/centromed/internal/cli/credentials"
	"github.com/marmos91/centromed/internal/cli/output"
	"github.com/marmos91/centromed/internal/cli/prompt"
	"github.com/marmos91/centromed/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// Out is where command results are printed.
var Out io.Writer = os.Stdout

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	Centro    string
	NoColor   bool
}

// GetAuthenticatedClient returns a client for the current context. --server
// and --token override the stored values. An expired access token is
// refreshed and the new pair saved. --centro, when given, is sent with
// every request.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token).WithCentro(Flags.Centro), nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	ctx, err := store.Current()
	if err != nil {
		return nil, credentials.ErrNotLoggedIn
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL configured. Run 'centroctl login --server <url>' first")
	}

	tok := ctx.AccessToken
	if Flags.Token != "" {
		tok = Flags.Token
	} else if ctx.IsExpired() && ctx.HasRefreshToken() {
		tokens, err := apiclient.New(url).RefreshToken(ctx.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("session expired. Run 'centroctl login' to re-authenticate")
		}
		if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to save refreshed tokens: %w", err)
		}
		tok = tokens.AccessToken
	}
	if tok == "" {
		return nil, credentials.ErrNotLoggedIn
	}

	return apiclient.New(url).WithToken(tok).WithCentro(Flags.Centro), nil
}

// ServerURL returns --server or the current context's server, for
// commands that need no token.
func ServerURL() (string, error) {
	if Flags.ServerURL != "" {
		return Flags.ServerURL, nil
	}
	store, err := credentials.NewStore()
	if err != nil {
		return "", err
	}
	ctx, err := store.Current()
	if err != nil || ctx.ServerURL == "" {
		return "", fmt.Errorf("no server URL: pass --server or run 'centroctl login'")
	}
	return ctx.ServerURL, nil
}

// CreateCentro returns the selector for a create: --centro, else the
// current context's default centro. Empty means the server decides, which
// only works for usuarios bound to one centro.
func CreateCentro() string {
	if Flags.Centro != "" {
		return Flags.Centro
	}
	store, err := credentials.NewStore()
	if err != nil {
		return ""
	}
	if ctx, err := store.Current(); err == nil {
		return ctx.Centro
	}
	return ""
}

// Printer returns a printer for Out honoring --output and --no-color.
func Printer() (*output.Printer, error) {
	return PrinterTo(Out)
}

// PrinterTo is Printer writing to w.
func PrinterTo(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	p := output.NewPrinter(w, format)
	if Flags.NoColor {
		p.WithColor(false)
	}
	return p, nil
}

// PrintOutput prints data as JSON or YAML, or as the table when the
// output format is table. An empty table prints emptyMsg instead.
func PrintOutput(p *output.Printer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	if p.Structured() {
		return p.Print(data)
	}
	if isEmpty {
		p.Println(emptyMsg)
		return nil
	}
	return p.Print(table)
}

// PrintSuccess prints msg in table mode only.
func PrintSuccess(p *output.Printer, msg string) {
	if !p.Structured() {
		p.Success(msg)
	}
}

// HandleAbort turns a prompt abort into a clean exit.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// RunDeleteWithConfirmation asks before running deleteFn unless force is set.
func RunDeleteWithConfirmation(p *output.Printer, what string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s?", what), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		p.Println("Aborted.")
		return nil
	}
	if err := deleteFn(); err != nil {
		return err
	}
	PrintSuccess(p, fmt.Sprintf("Deleted %s", what))
	return nil
}

// ParseID parses a global id argument.
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: ids are positive integers", arg)
	}
	return id, nil
}

// ParseFields builds a request body from a JSON document and key=value
// assignments. Assignments override keys of the document. Values are typed:
// integers, decimals, true/false and null are sent as such, everything else
// as a string. Quote a value ('"0991"') to force a string.
func ParseFields(doc []byte, sets []string) (map[string]any, error) {
	fields := map[string]any{}
	if len(strings.TrimSpace(string(doc))) > 0 {
		if err := json.Unmarshal(doc, &fields); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", set)
		}
		fields[key] = typedValue(value)
	}
	if len(fields) == 0 {
		return nil, errors.New("no fields given: use --set key=value or --file")
	}
	return fields, nil
}

func typedValue(s string) any {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	// Leading zeros (cedulas, phone numbers) stay strings.
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ReadBody reads a --file argument. "-" reads stdin, empty reads nothing.
func ReadBody(path string, stdin io.Reader) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(stdin)
	default:
		return os.ReadFile(path)
	}
}

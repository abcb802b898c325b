// Package credentials keeps centroctl's server contexts and tokens on disk.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	DefaultConfigDir = "centroctl"
	ConfigFileName   = "config.json"

	FilePermissions = 0600
	DirPermissions  = 0700

	// EnvConfigHome overrides the directory holding the store.
	EnvConfigHome = "CENTROCTL_HOME"
)

var (
	ErrNoCurrentContext = errors.New("no current context set")
	ErrContextNotFound  = errors.New("context not found")
	ErrNotLoggedIn      = errors.New("not logged in: run 'centroctl login' first")
)

// Context is one server centroctl has logged into.
type Context struct {
	ServerURL string `json:"server_url"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`

	// Home is the centro a pinned usuario belongs to. Empty for admins.
	Home string `json:"home,omitempty"`

	// Centro is the selector sent with creates when --centro is not given.
	Centro string `json:"centro,omitempty"`

	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token is missing or expires within
// a minute.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(time.Minute).After(c.ExpiresAt)
}

func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// LoggedIn reports whether the context holds any token.
func (c *Context) LoggedIn() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Preferences are user defaults for flags.
type Preferences struct {
	DefaultOutput string `json:"default_output,omitempty"`
}

// Config is the on-disk document.
type Config struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
	Preferences    Preferences         `json:"preferences,omitempty"`
}

// Store reads and writes the centroctl config file.
type Store struct {
	configPath string
	config     *Config
}

// NewStore opens the store at its default location.
func NewStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Open opens the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{configPath: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.config = &Config{}
	case err != nil:
		return nil, err
	default:
		s.config = &Config{}
		if err := json.Unmarshal(data, s.config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if s.config.Contexts == nil {
		s.config.Contexts = make(map[string]*Context)
	}
	return s, nil
}

// DefaultPath is $CENTROCTL_HOME/config.json, falling back to
// $XDG_CONFIG_HOME/centroctl/config.json.
func DefaultPath() (string, error) {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return filepath.Join(dir, ConfigFileName), nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDir, ConfigFileName), nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath, data, FilePermissions)
}

func (s *Store) ConfigPath() string {
	return s.configPath
}

// Current returns the active context.
func (s *Store) Current() (*Context, error) {
	if s.config.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	ctx, ok := s.config.Contexts[s.config.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

func (s *Store) CurrentName() string {
	return s.config.CurrentContext
}

func (s *Store) Get(name string) (*Context, error) {
	ctx, ok := s.config.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// Names returns the context names sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.config.Contexts))
	for name := range s.config.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save stores ctx under name and makes it current.
func (s *Store) Save(name string, ctx *Context) error {
	s.config.Contexts[name] = ctx
	s.config.CurrentContext = name
	return s.save()
}

func (s *Store) Use(name string) error {
	if _, ok := s.config.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.config.CurrentContext = name
	return s.save()
}

func (s *Store) Delete(name string) error {
	if _, ok := s.config.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	delete(s.config.Contexts, name)
	if s.config.CurrentContext == name {
		s.config.CurrentContext = ""
	}
	return s.save()
}

// UpdateTokens replaces the tokens of the current context after a refresh.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, err := s.Current()
	if err != nil {
		return err
	}
	ctx.AccessToken = accessToken
	ctx.RefreshToken = refreshToken
	ctx.ExpiresAt = expiresAt
	return s.save()
}

// SetCentro changes the default create selector of the current context.
func (s *Store) SetCentro(selector string) error {
	ctx, err := s.Current()
	if err != nil {
		return err
	}
	ctx.Centro = selector
	return s.save()
}

// Logout drops the tokens of the current context but keeps the server and
// username for the next login.
func (s *Store) Logout() error {
	ctx, err := s.Current()
	if err != nil {
		return err
	}
	ctx.AccessToken = ""
	ctx.RefreshToken = ""
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

func (s *Store) Preferences() Preferences {
	return s.config.Preferences
}

func (s *Store) SetPreferences(prefs Preferences) error {
	s.config.Preferences = prefs
	return s.save()
}

// ContextName derives a context name from a server URL: its host with the
// port joined by a dash, e.g. "localhost-8080".
func ContextName(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return "default"
	}
	return strings.ReplaceAll(u.Host, ":", "-")
}

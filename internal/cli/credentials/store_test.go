package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{name: "expired in past", expiresAt: time.Now().Add(-time.Hour), expected: true},
		{name: "expires within a minute", expiresAt: time.Now().Add(30 * time.Second), expected: true},
		{name: "not expired", expiresAt: time.Now().Add(2 * time.Hour), expected: false},
		{name: "zero time is expired", expiresAt: time.Time{}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, ctx.IsExpired())
		})
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigHome, "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultConfigDir, ConfigFileName), path)

	t.Setenv(EnvConfigHome, "/etc/centroctl")
	path, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/centroctl/config.json", path)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroctl", ConfigFileName)

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Current()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
	assert.Empty(t, store.Names())

	require.NoError(t, store.Save("localhost-8080", &Context{
		ServerURL:    "http://localhost:8080",
		Username:     "recepgye",
		Role:         "recepcion",
		Home:         "guayaquil",
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	current, err := reopened.Current()
	require.NoError(t, err)
	assert.Equal(t, "recepgye", current.Username)
	assert.Equal(t, "guayaquil", current.Home)
	assert.True(t, current.LoggedIn())

	require.NoError(t, reopened.SetCentro("2"))
	require.NoError(t, reopened.UpdateTokens("a2", "r2", time.Now().Add(2*time.Hour)))
	current, _ = reopened.Current()
	assert.Equal(t, "2", current.Centro)
	assert.Equal(t, "a2", current.AccessToken)

	require.NoError(t, reopened.Logout())
	current, _ = reopened.Current()
	assert.False(t, current.LoggedIn())
	assert.Equal(t, "http://localhost:8080", current.ServerURL)
	assert.Equal(t, "recepgye", current.Username)
}

func TestStoreContexts(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)

	require.NoError(t, store.Save("b", &Context{ServerURL: "http://b"}))
	require.NoError(t, store.Save("a", &Context{ServerURL: "http://a"}))
	assert.Equal(t, []string{"a", "b"}, store.Names())
	assert.Equal(t, "a", store.CurrentName())

	require.NoError(t, store.Use("b"))
	assert.Equal(t, "b", store.CurrentName())
	assert.ErrorIs(t, store.Use("c"), ErrContextNotFound)

	require.NoError(t, store.Delete("b"))
	assert.Empty(t, store.CurrentName())
	_, err = store.Get("b")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{"), FilePermissions))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestContextName(t *testing.T) {
	assert.Equal(t, "localhost-8080", ContextName("http://localhost:8080"))
	assert.Equal(t, "centro.example.com", ContextName("https://centro.example.com/"))
	assert.Equal(t, "default", ContextName("::"))
}

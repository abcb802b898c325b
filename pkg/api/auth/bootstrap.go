package auth

import (
	"crypto/subtle"

	"github.com/marmos91/centromed/pkg/hospital/models"
)

// BootstrapAdmin is the admin account defined in configuration. It can log
// in before any usuario exists on the shards.
type BootstrapAdmin struct {
	Username     string
	PasswordHash string
}

// Verify reports whether username and password match the account. A nil
// or unconfigured account never matches.
func (a *BootstrapAdmin) Verify(username, password string) bool {
	if a == nil || a.Username == "" || a.PasswordHash == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(a.Username), []byte(username)) != 1 {
		return false
	}
	return models.VerifyPassword(password, a.PasswordHash)
}

// Is reports whether username names the account.
func (a *BootstrapAdmin) Is(username string) bool {
	return a != nil && a.Username != "" && a.Username == username
}

// Identity returns the unpinned admin identity of the account.
func (a *BootstrapAdmin) Identity() Identity {
	return Identity{Username: a.Username, Role: models.RolAdmin}
}

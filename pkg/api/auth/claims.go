// Package auth provides JWT authentication for the centromed API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/resolver"
)

// TokenType indicates whether a token is an access token or refresh token.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token used for API authorization.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is a long-lived token used to obtain new access tokens.
	TokenTypeRefresh TokenType = "refresh"
)

// Identity is who a token is issued to.
type Identity struct {
	Username string
	Role     string

	// Home is the shard storing the account. Empty for the configured
	// bootstrap admin.
	Home string

	// Centro is the shard the caller is pinned to. Empty for admins.
	Centro   string
	CentroID int64
}

// Claims represents JWT claims for centromed authentication.
type Claims struct {
	jwt.RegisteredClaims

	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Home      string    `json:"home,omitempty"`
	Centro    string    `json:"centro,omitempty"`
	CentroID  int64     `json:"centro_id,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// IsAdmin returns true for unpinned admin callers.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RolAdmin && c.Centro == ""
}

// Caller converts the claims into the identity the resolver routes on.
func (c *Claims) Caller() resolver.Caller {
	return resolver.Caller{
		Subject:     c.Username,
		Role:        c.Role,
		Admin:       c.IsAdmin(),
		PinnedShard: c.Centro,
	}
}

// Identity returns the identity the claims were issued for.
func (c *Claims) Identity() Identity {
	return Identity{
		Username: c.Username,
		Role:     c.Role,
		Home:     c.Home,
		Centro:   c.Centro,
		CentroID: c.CentroID,
	}
}

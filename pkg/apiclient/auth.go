package apiclient

import (
	"time"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User describes the authenticated caller.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Admin    bool   `json:"admin"`
	Home     string `json:"home,omitempty"`
	Centro   string `json:"centro,omitempty"`
	CentroID int64  `json:"centro_id,omitempty"`
}

// TokenResponse represents the response from login/refresh endpoints.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// ExpiresInDuration returns ExpiresIn as a time.Duration.
func (t *TokenResponse) ExpiresInDuration() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Second
}

// Login authenticates with the server and returns tokens.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	return createResource[TokenResponse](c, "/api/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	})
}

// RefreshToken refreshes the access token using the refresh token.
func (c *Client) RefreshToken(refreshToken string) (*TokenResponse, error) {
	req := struct {
		RefreshToken string `json:"refresh_token"`
	}{
		RefreshToken: refreshToken,
	}
	return createResource[TokenResponse](c, "/api/v1/auth/refresh", req)
}

// Me returns the identity carried by the current token.
func (c *Client) Me() (*User, error) {
	return getResource[User](c, "/api/v1/auth/me")
}

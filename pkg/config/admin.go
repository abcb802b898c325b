package config

import (
	"fmt"

	"github.com/marmos91/centromed/pkg/api/auth"
	"github.com/marmos91/centromed/pkg/hospital/models"
)

// Configured reports whether a bootstrap admin credential is present.
func (c *AdminConfig) Configured() bool {
	return c.PasswordHash != "" || c.Password != ""
}

// Bootstrap returns the login-only administrator described by the config,
// hashing a plain password if one was given. It returns nil when no
// credential is configured.
func (c *AdminConfig) Bootstrap() (*auth.BootstrapAdmin, error) {
	if !c.Configured() {
		return nil, nil
	}
	hash := c.PasswordHash
	if hash == "" {
		var err error
		if hash, err = models.HashPassword(c.Password); err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
	}
	return &auth.BootstrapAdmin{Username: c.Username, PasswordHash: hash}, nil
}

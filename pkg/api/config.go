package api

import (
	"os"
	"time"

	"github.com/marmos91/centromed/internal/bytesize"
	"github.com/marmos91/centromed/internal/logger"
)

// EnvAPISecret overrides the JWT signing secret.
const EnvAPISecret = "CENTROMED_API_SECRET"

// APIConfig configures the REST API HTTP server.
type APIConfig struct {
	// Port is the HTTP port for the API endpoints.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port" json:"port,omitempty"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"read_timeout,omitempty"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Default: 30s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"write_timeout,omitempty"`

	// IdleTimeout is the keep-alive idle timeout. Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" json:"idle_timeout,omitempty"`

	// RequestTimeout bounds the handling of a single request. It should be
	// larger than the fan-out query timeout. Default: 30s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" json:"request_timeout,omitempty"`

	// MaxBodySize caps request bodies, e.g. "1Mi" or "512KB". Default: 1Mi
	MaxBodySize bytesize.ByteSize `mapstructure:"max_body_size" yaml:"max_body_size" json:"max_body_size,omitempty"`

	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt" json:"jwt"`
}

// JWTConfig configures JWT token generation and validation.
type JWTConfig struct {
	// Secret is the HMAC signing key, at least 32 characters.
	// CENTROMED_API_SECRET takes precedence.
	Secret string `mapstructure:"secret" yaml:"secret" json:"secret,omitempty"`

	// AccessTokenDuration defaults to 15m.
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration" json:"access_token_duration,omitempty"`

	// RefreshTokenDuration defaults to 168h.
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" yaml:"refresh_token_duration" json:"refresh_token_duration,omitempty"`
}

// ApplyDefaults fills in zero values.
func (c *APIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = bytesize.MiB
	}
	if c.JWT.AccessTokenDuration == 0 {
		c.JWT.AccessTokenDuration = 15 * time.Minute
	}
	if c.JWT.RefreshTokenDuration == 0 {
		c.JWT.RefreshTokenDuration = 7 * 24 * time.Hour
	}
}

// GetJWTSecret returns the JWT secret, preferring the environment variable.
func (c *APIConfig) GetJWTSecret() string {
	envSecret := os.Getenv(EnvAPISecret)
	if envSecret != "" {
		if c.JWT.Secret != "" && c.JWT.Secret != envSecret {
			logger.Warn("JWT secret from environment variable overrides config file value",
				"env_var", EnvAPISecret)
		}
		return envSecret
	}
	return c.JWT.Secret
}

// HasJWTSecret reports whether a JWT secret is configured in the file or
// the environment.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}

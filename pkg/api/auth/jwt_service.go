package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors for JWT operations.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrTokenSigningFailed  = errors.New("failed to sign token")
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// JWTConfig holds configuration for JWT token generation.
type JWTConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	Secret string

	// Issuer is the token issuer claim. Default: "centromed"
	Issuer string

	// AccessTokenDuration is the lifetime of access tokens. Default: 15 minutes.
	AccessTokenDuration time.Duration

	// RefreshTokenDuration is the lifetime of refresh tokens. Default: 7 days.
	RefreshTokenDuration time.Duration
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	config JWTConfig
}

// TokenPair contains both access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}

	if config.Issuer == "" {
		config.Issuer = "centromed"
	}
	if config.AccessTokenDuration == 0 {
		config.AccessTokenDuration = 15 * time.Minute
	}
	if config.RefreshTokenDuration == 0 {
		config.RefreshTokenDuration = 7 * 24 * time.Hour
	}

	return &JWTService{config: config}, nil
}

// GenerateTokenPair creates a new access/refresh token pair for id.
func (s *JWTService) GenerateTokenPair(id Identity) (*TokenPair, error) {
	now := time.Now()
	pair := &TokenPair{
		TokenType: "Bearer",
		ExpiresIn: int64(s.config.AccessTokenDuration.Seconds()),
		ExpiresAt: now.Add(s.config.AccessTokenDuration),
	}

	var err error
	if pair.AccessToken, err = s.sign(id, TokenTypeAccess, now, pair.ExpiresAt); err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	if pair.RefreshToken, err = s.sign(id, TokenTypeRefresh, now, now.Add(s.config.RefreshTokenDuration)); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return pair, nil
}

// sign issues one token. Subject is the username; the centro claims pin
// the caller to a shard for every later request.
func (s *JWTService) sign(id Identity, tokenType TokenType, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:  id.Username,
		Role:      id.Role,
		Home:      id.Home,
		Centro:    id.Centro,
		CentroID:  id.CentroID,
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", ErrTokenSigningFailed
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken accepts only access tokens.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateAs(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken accepts only refresh tokens.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateAs(tokenString, TokenTypeRefresh)
}

func (s *JWTService) validateAs(tokenString string, want TokenType) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *JWTService) AccessTokenDuration() time.Duration {
	return s.config.AccessTokenDuration
}

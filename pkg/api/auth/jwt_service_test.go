package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/centromed/pkg/hospital/models"
)

const testSecret = "test-secret-key-must-be-32-chars!"

func newService(t *testing.T, access time.Duration) *JWTService {
	t.Helper()
	service, err := NewJWTService(JWTConfig{
		Secret:               testSecret,
		Issuer:               "test-issuer",
		AccessTokenDuration:  access,
		RefreshTokenDuration: time.Hour,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return service
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Secret: "short"})
	if !errors.Is(err, ErrInvalidSecretLength) {
		t.Fatalf("Expected ErrInvalidSecretLength, got: %v", err)
	}
}

func TestGenerateAndValidatePinnedToken(t *testing.T) {
	service := newService(t, 15*time.Minute)

	pair, err := service.GenerateTokenPair(Identity{
		Username: "recepgye",
		Role:     models.RolRecepcion,
		Home:     "guayaquil",
		Centro:   "guayaquil",
		CentroID: 2,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("Expected token type Bearer, got %s", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("Unexpected expires_in %d", pair.ExpiresIn)
	}

	claims, err := service.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("Expected valid access token, got: %v", err)
	}
	if claims.ID == "" {
		t.Error("Expected token id")
	}
	caller := claims.Caller()
	if caller.Admin {
		t.Error("Recepcion caller must not be admin")
	}
	if caller.PinnedShard != "guayaquil" {
		t.Errorf("Expected pin guayaquil, got %q", caller.PinnedShard)
	}
}

func TestAdminTokenIsUnpinned(t *testing.T) {
	service := newService(t, time.Minute)

	pair, err := service.GenerateTokenPair(Identity{Username: "admin", Role: models.RolAdmin})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	claims, err := service.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !claims.IsAdmin() || claims.Caller().Pinned() {
		t.Errorf("Expected unpinned admin, got %+v", claims.Caller())
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	service := newService(t, time.Minute)
	pair, _ := service.GenerateTokenPair(Identity{Username: "u", Role: models.RolMedico, Centro: "central"})

	if _, err := service.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType for refresh as access, got: %v", err)
	}
	if _, err := service.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("Expected ErrInvalidTokenType for access as refresh, got: %v", err)
	}
	if _, err := service.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("Expected valid refresh token, got: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	service := newService(t, -time.Minute)
	pair, _ := service.GenerateTokenPair(Identity{Username: "u", Role: models.RolAdmin})

	if _, err := service.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got: %v", err)
	}
}

func TestTokenFromOtherSecret(t *testing.T) {
	a := newService(t, time.Minute)
	b, _ := NewJWTService(JWTConfig{Secret: "another-secret-key-with-32-chars!!", Issuer: "test-issuer"})

	pair, _ := a.GenerateTokenPair(Identity{Username: "u", Role: models.RolAdmin})
	if _, err := b.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got: %v", err)
	}
}

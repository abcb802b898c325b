package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/api/auth"
	"github.com/marmos91/centromed/pkg/api/middleware"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/hospital/service"
	"github.com/marmos91/centromed/pkg/shard"
)

// AuthHandler handles authentication-related API endpoints.
type AuthHandler struct {
	catalog    *service.Catalog
	admin      *auth.BootstrapAdmin
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler. admin may be nil.
func NewAuthHandler(catalog *service.Catalog, admin *auth.BootstrapAdmin, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{catalog: catalog, admin: admin, jwtService: jwtService}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the request body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is the response body for login and refresh.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// UserResponse describes the authenticated caller.
type UserResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Admin    bool   `json:"admin"`
	Home     string `json:"home,omitempty"`
	Centro   string `json:"centro,omitempty"`
	CentroID int64  `json:"centro_id,omitempty"`
}

// Login handles POST /api/v1/auth/login. The configured admin is checked
// first, then usuarios on every centro.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	var id auth.Identity
	if h.admin.Verify(req.Username, req.Password) {
		id = h.admin.Identity()
	} else {
		acct, err := h.catalog.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				Unauthorized(w, "Invalid username or password")
				return
			}
			writeServiceError(w, r, err)
			return
		}
		id = identityOf(acct)
	}

	logger.InfoCtx(r.Context(), "Login succeeded",
		logger.KeyUsername, id.Username,
		logger.KeyRole, id.Role,
		logger.KeyPinned, id.Centro)
	h.issue(w, id)
}

// Refresh handles POST /api/v1/auth/refresh. The account is read again so
// role and activation changes take effect.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			Unauthorized(w, "Refresh token has expired")
			return
		}
		Unauthorized(w, "Invalid refresh token")
		return
	}

	if claims.Home == "" {
		if !h.admin.Is(claims.Username) {
			Unauthorized(w, "User not found")
			return
		}
		h.issue(w, h.admin.Identity())
		return
	}

	acct, err := h.catalog.Lookup(r.Context(), claims.Home, claims.Username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, shard.ErrUnknownShard) {
			Unauthorized(w, "User not found or disabled")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	h.issue(w, identityOf(acct))
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}
	WriteJSONOK(w, userResponse(claims.Identity()))
}

func (h *AuthHandler) issue(w http.ResponseWriter, id auth.Identity) {
	pair, err := h.jwtService.GenerateTokenPair(id)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}
	WriteJSONOK(w, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
		User:         userResponse(id),
	})
}

// identityOf pins non-admin accounts to the centro storing them.
func identityOf(acct *service.Account) auth.Identity {
	id := auth.Identity{
		Username: acct.Usuario.Username,
		Role:     acct.Usuario.Rol,
		Home:     acct.Shard.Key,
	}
	if !acct.Usuario.IsAdmin() {
		id.Centro = acct.Shard.Key
		id.CentroID = acct.Shard.CentroID
	}
	return id
}

func userResponse(id auth.Identity) UserResponse {
	return UserResponse{
		Username: id.Username,
		Role:     id.Role,
		Admin:    id.Role == models.RolAdmin && id.Centro == "",
		Home:     id.Home,
		Centro:   id.Centro,
		CentroID: id.CentroID,
	}
}

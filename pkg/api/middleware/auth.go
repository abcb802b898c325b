// Package middleware provides HTTP middleware for the centromed API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/api/auth"
	"github.com/marmos91/centromed/pkg/resolver"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// CallerFromContext returns the routing identity of the authenticated
// request.
func CallerFromContext(ctx context.Context) (resolver.Caller, bool) {
	claims := GetClaimsFromContext(ctx)
	if claims == nil {
		return resolver.Caller{}, false
	}
	return claims.Caller(), true
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// JWTAuth validates Bearer tokens in the Authorization header and stores
// the claims in the request context. Missing or invalid tokens get 401.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithUser(claims.Username))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin blocks callers that are not unpinned admins. Must be used
// after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if !claims.IsAdmin() {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

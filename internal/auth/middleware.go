package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/models"
	pkghttp "github.com/inkwell-cms/inkwell/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// PrincipalContextKey is the key for storing the resolved principal in context
	PrincipalContextKey contextKey = "principal"
)

// PrincipalResolver resolves a token subject against one realm's collection.
type PrincipalResolver interface {
	GetByID(ctx context.Context, id string) (*models.Principal, error)
}

// Middleware is the auth gate for one realm. It extracts the bearer token,
// verifies it, resolves the principal against the realm's own store and
// attaches it (hash excluded) to the request context. Instantiate once per
// realm; an admin token resolves only against the admin collection.
func Middleware(tm *TokenManager, resolver PrincipalResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "no token provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "no token provided")
				return
			}

			claims, err := tm.Verify(parts[1])
			if err != nil {
				pkghttp.WriteError(w, http.StatusBadRequest, "invalid_token", "invalid token")
				return
			}

			// The principal may have been deleted after the token was issued
			principal, err := resolver.GetByID(r.Context(), claims.PrincipalID())
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "principal not found")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			sanitized := *principal
			sanitized.PasswordHash = ""

			ctx := context.WithValue(r.Context(), PrincipalContextKey, &sanitized)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipalFromContext extracts the resolved principal from request context
func GetPrincipalFromContext(r *http.Request) *models.Principal {
	principal, ok := r.Context().Value(PrincipalContextKey).(*models.Principal)
	if !ok {
		return nil
	}
	return principal
}

// RequireRole enforces role-based access on top of the auth gate.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r)
			if principal == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "insufficient permissions")
		})
	}
}

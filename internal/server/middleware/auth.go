// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// principalKey is the context key for storing the authenticated principal.
const principalKey ContextKey = "principal"

// TokenValidator is an interface for validating bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (PrincipalGetter, error)
}

// PrincipalGetter extracts the caller identity from token claims.
type PrincipalGetter interface {
	GetPrincipal() types.Principal
}

// AuthMiddleware creates middleware that validates bearer tokens and adds
// the principal to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			principal := claims.GetPrincipal()
			if !principal.Role.IsValid() {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after AuthMiddleware.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	allowed := make(map[types.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := GetPrincipal(r)
			if err != nil {
				unauthorized(w)
				return
			}
			if !allowed[principal.Role] {
				writeError(w, http.StatusForbidden, "role "+string(principal.Role)+" is not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(r *http.Request) (types.Principal, error) {
	principal, ok := r.Context().Value(principalKey).(types.Principal)
	if !ok {
		return types.Principal{}, fmt.Errorf("principal not found in request context")
	}
	return principal, nil
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// bearerToken parses "Bearer <token>", case-insensitive on the scheme
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"nfl-projections-go/services"
)

// ClaimsContextKey is the key used to store admin claims in request context
type ClaimsContextKey string

const ClaimsKey ClaimsContextKey = "claims"

// AuthCookieName holds the admin token set by the login endpoint.
const AuthCookieName = "auth_token"

// TokenValidator checks admin tokens.
type TokenValidator interface {
	ValidateToken(token string) (*services.JWTClaims, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAdmin rejects requests without a valid admin token.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth adds admin claims to the context when a valid token is present
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := m.claimsFromRequest(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

// claimsFromRequest reads the token from a bearer header or the auth cookie
func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*services.JWTClaims, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return m.validator.ValidateToken(parts[1])
		}
	}

	cookie, err := r.Cookie(AuthCookieName)
	if err == nil && cookie.Value != "" {
		return m.validator.ValidateToken(cookie.Value)
	}

	return nil, http.ErrNoCookie
}

// IsAdmin checks if the request carries valid admin claims
func IsAdmin(r *http.Request) bool {
	_, ok := r.Context().Value(ClaimsKey).(*services.JWTClaims)
	return ok
}

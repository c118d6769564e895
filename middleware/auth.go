package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-storefront/utils"
)

// Key type for context
type contextKey string

const (
	UserContextKey    = contextKey("user")
	SessionContextKey = contextKey("session")
)

// TokenCookie carries the token for browser clients.
const TokenCookie = "token"

// TokenParser verifies a token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*utils.Claims, error)
}

// ClaimsFrom returns the claims attached by Auth.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

func tokenFrom(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// Auth verifies the bearer token (or token cookie) and attaches the claims
// to the request context.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := tokenFrom(r)
			if !ok {
				http.Error(w, "Missing or malformed credentials", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when Auth attached claims with
// the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireStaticToken guards operator endpoints with a single bearer token.
// An empty token leaves the endpoint open. Missing or mismatch → 403.
func RequireStaticToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusForbidden, "Forbidden", "Authorization header required")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondWithError(w, http.StatusForbidden, "Forbidden", "Invalid authorization format")
				return
			}
			if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
				respondWithError(w, http.StatusForbidden, "Forbidden", "Invalid operator token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"spotnsort/models"
	"spotnsort/service"
	"strings"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "spotnsort_session"

type contextKey string

const (
	userKey      contextKey = "user"
	sessionIDKey contextKey = "session_id"
)

// SessionResolver maps a session token to the logged-in user
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*service.Session, error)
}

// AuthMiddleware resolves the session token and puts the user in the request context
type AuthMiddleware struct {
	sessions SessionResolver
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth rejects requests without a live session with 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}

		session, err := m.sessions.Resolve(r.Context(), token)
		if errors.Is(err, models.ErrUnauthenticated) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Session expired or logged out. Please log in again.")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to load session")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole allows only sessions whose user has one of roles; others get 403.
// Must run after RequireAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden, "Forbidden", "This page is not available for your role")
		})
	}
}

// tokenFromRequest reads the bearer header, then the session cookie, then the
// token query parameter (browsers cannot set headers on websocket upgrades).
func tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("Invalid authorization format. Expected: Bearer <token>")
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, nil
	}
	return "", errors.New("Authorization header required. Please log in first.")
}

// WithSession stores session in ctx
func WithSession(ctx context.Context, session *service.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, session.User)
	return context.WithValue(ctx, sessionIDKey, session.ID)
}

// UserFromContext returns the logged-in user
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// SessionIDFromContext returns the current session id, or ""
func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: errorType, Message: message, Code: statusCode})
}

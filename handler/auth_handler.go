package handler

import (
	"net/http"
	"spotnsort/middleware"
	"spotnsort/models"
	"spotnsort/service"
)

// AuthHandler handles registration, login and logout for both roles
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	setSessionCookie(w, resp.Token)
	respondWithJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &creds)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	setSessionCookie(w, resp.Token)
	respondWithJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout. The stored user is removed so the token stops working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		respondWithServiceError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Login required")
		return
	}
	respondWithJSON(w, http.StatusOK, user.Public())
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

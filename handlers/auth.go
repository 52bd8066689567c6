package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"nfl-projections-go/interfaces"
	"nfl-projections-go/logging"
	"nfl-projections-go/middleware"
	"nfl-projections-go/services"
)

// AuthHandler handles admin login and logout
type AuthHandler struct {
	authService   interfaces.AuthService
	secureCookies bool
	logger        *logging.Logger
}

// NewAuthHandler creates a new authentication handler. secureCookies marks
// the auth cookie HTTPS-only.
func NewAuthHandler(authService interfaces.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logging.WithPrefix("AuthHandler"),
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/login with a JSON or form password. On success
// the token is set as a cookie and returned in the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	} else {
		req.Password = r.FormValue("password")
	}
	if req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "password is required")
		return
	}

	token, expires, err := h.authService.Login(req.Password)
	switch {
	case errors.Is(err, services.ErrAdminDisabled):
		writeJSONError(w, http.StatusForbidden, "admin login is disabled")
		return
	case err != nil:
		h.logger.Warnf("Admin login failed from %s", r.RemoteAddr)
		writeJSONError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	h.setAuthCookie(w, token, expires)
	h.logger.Infof("Admin logged in from %s", r.RemoteAddr)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("Encoding JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

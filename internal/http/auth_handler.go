package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"campusgate/internal/auth"
)

const sessionCookieName = "access_token"

type googleVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*auth.GoogleClaims, error)
	ExchangeCode(ctx context.Context, code, redirectURI string) (*auth.GoogleClaims, error)
}

// AuthHandler exposes the login, current-user, and logout endpoints.
type AuthHandler struct {
	google      googleVerifier
	authService *auth.Service
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(google googleVerifier, authService *auth.Service, frontendURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:      google,
		authService: authService,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		logger:      logger,
	}
}

// GoogleLogin handles POST /api/auth/google.
// The client hands over a Google ID token (popup flow); on success the
// session token is delivered both as a cookie and in the JSON body.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GoogleToken string `json:"google_token"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.GoogleToken) == "" {
		writeError(w, http.StatusBadRequest, "google_token is required")
		return
	}

	claims, err := h.google.VerifyIDToken(r.Context(), payload.GoogleToken)
	if err != nil {
		writeAuthError(w, err, h.logger)
		return
	}

	user, token, err := h.authService.CompleteLogin(r.Context(), claims)
	if err != nil {
		writeAuthError(w, err, h.logger)
		return
	}

	h.logger.Info("login successful", "email", user.Email)

	http.SetCookie(w, h.sessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Login successful",
		"access_token": token,
		"user":         newUserView(user),
	})
}

// GoogleCallback handles GET /api/auth/google/callback.
// Google redirects here with an authorization code (or an error); the code is
// exchanged server-side and the browser is sent back to the frontend with the
// session cookie attached.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		http.Redirect(w, r, h.frontendURL+"/?error="+url.QueryEscape(errParam), http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	claims, err := h.google.ExchangeCode(r.Context(), code, redirectURIFromRequest(r))
	if err != nil {
		writeAuthError(w, err, h.logger)
		return
	}

	user, token, err := h.authService.CompleteLogin(r.Context(), claims)
	if err != nil {
		writeAuthError(w, err, h.logger)
		return
	}

	h.logger.Info("oauth login successful", "email", user.Email)

	http.SetCookie(w, h.sessionCookie(token))
	http.Redirect(w, r, h.frontendURL+"/dashboard", http.StatusTemporaryRedirect)
}

// Me handles GET /api/auth/me. The request gate has already validated the
// token and resolved the directory record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout is
// cookie deletion only; it always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	clearCookie := h.sessionCookie("")
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)

	http.SetCookie(w, clearCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// sessionCookie builds the cross-site session cookie. SameSite=None requires
// Secure; the frontend is served from a different origin.
func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(h.authService.TokenTTL().Seconds()),
	}
}

// redirectURIFromRequest reconstructs the callback URL Google redirected to,
// stripped of its query. The exchange requires an exact match with the
// registered redirect URI.
func redirectURIFromRequest(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}

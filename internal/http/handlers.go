package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"campusgate/internal/auth"
)

const maxJSONBodyBytes int64 = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	limited := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() { _ = limited.Close() }()

	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// userView is the public representation of a directory record.
type userView struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider"`
}

func newUserView(user *auth.User) userView {
	return userView{
		Email:    user.Email,
		Name:     user.Name,
		Picture:  user.Picture,
		Provider: user.Provider,
	}
}

// writeAuthError maps pipeline error kinds to HTTP statuses at the transport
// boundary. Verification internals stay in the logs; responses carry only the
// generic detail for each kind.
func writeAuthError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, auth.ErrDomainRejected):
		writeError(w, http.StatusForbidden, "Email domain not allowed")
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrVerificationFailed):
		logger.Warn("google token rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid Google token")
	case errors.Is(err, auth.ErrExchangeFailed):
		logger.Warn("code exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "Token exchange failed")
	case errors.Is(err, auth.ErrMissingIDToken):
		writeError(w, http.StatusBadRequest, "No id_token returned")
	default:
		logger.Error("auth pipeline error", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}

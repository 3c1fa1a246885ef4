package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory record for an authenticated account. The email is
// unique and never changes once the record exists.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Picture   string
	Provider  string
	CreatedAt time.Time
}

// GoogleClaims contains the relevant claims from a verified Google ID token.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HostedDomain  string `json:"hd"`
}

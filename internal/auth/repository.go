package auth

import (
	"context"
	"errors"
)

// ErrEmailExists is returned by Create when a record with the same email
// already exists. A concurrent duplicate insert surfaces as this error, never
// as a second record.
var ErrEmailExists = errors.New("email already exists")

// Repository defines the user directory persistence interface.
type Repository interface {
	// FindByEmail returns the user with the given email, or nil if absent.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a new user. Email uniqueness is enforced atomically by
	// the storage layer.
	Create(ctx context.Context, user User) (User, error)
}

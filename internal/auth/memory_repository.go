package auth

import (
	"context"
	"sync"
)

// InMemoryRepository stores users in an in-process map, ideal for local
// development or tests. The mutex provides the same atomic uniqueness
// guarantee the Postgres unique index does.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewInMemoryRepository constructs an empty in-memory directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]User)}
}

// FindByEmail returns the user with the given email, or nil if absent.
func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create inserts a new user, failing with ErrEmailExists on duplicates.
func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return User{}, ErrEmailExists
	}
	r.users[user.Email] = user
	return user, nil
}

// Count reports how many records the directory holds.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

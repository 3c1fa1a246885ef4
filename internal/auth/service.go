package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a valid token references an email with no
// directory record.
var ErrUserNotFound = errors.New("user not found")

// Service orchestrates the login pipeline: domain policy, directory upsert,
// and session token issuance. Provider verification happens before claims
// reach the service, so a verification failure never creates a record.
type Service struct {
	repo   Repository
	tokens *TokenCodec
	policy *DomainPolicy
}

// NewService creates a new auth Service.
func NewService(repo Repository, tokens *TokenCodec, policy *DomainPolicy) *Service {
	return &Service{repo: repo, tokens: tokens, policy: policy}
}

// TokenTTL returns the session token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// CompleteLogin runs the post-verification pipeline for a set of verified
// provider claims: policy check, get-or-create, token issue. The directory
// insert is the last mutating step before issuance.
func (s *Service) CompleteLogin(ctx context.Context, claims *GoogleClaims) (*User, string, error) {
	email := normalizeEmail(claims.Email)
	if err := s.policy.Check(email); err != nil {
		return nil, "", err
	}

	user, err := s.GetOrCreate(ctx, email, claims.Name, claims.Picture, "google")
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// GetOrCreate returns the directory record for email, inserting one if
// absent. An existing record is returned unchanged; profile fields are not
// refreshed on repeat logins. A lost race against a concurrent first login
// resolves to the winner's record.
func (s *Service) GetOrCreate(ctx context.Context, email, name, picture, provider string) (*User, error) {
	email = normalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.repo.Create(ctx, User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Picture:   picture,
		Provider:  provider,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			winner, findErr := s.repo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, fmt.Errorf("find user after insert race: %w", findErr)
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &created, nil
}

// Authenticate re-derives the caller's identity from a session token:
// validate, re-apply the domain policy, then look up the directory record.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(claims.Email)
	if err := s.policy.Check(email); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

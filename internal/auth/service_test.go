package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	findByEmail func(ctx context.Context, email string) (*User, error)
	create      func(ctx context.Context, user User) (User, error)
}

func (r *repoStub) FindByEmail(ctx context.Context, email string) (*User, error) {
	if r.findByEmail != nil {
		return r.findByEmail(ctx, email)
	}
	return nil, nil
}

func (r *repoStub) Create(ctx context.Context, user User) (User, error) {
	if r.create != nil {
		return r.create(ctx, user)
	}
	return user, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenCodec("test-secret", time.Hour), NewDomainPolicy([]string{"iba-suk.edu.pk"}))
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo)

	first, err := svc.GetOrCreate(context.Background(), "student@iba-suk.edu.pk", "Student", "pic.png", "google")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	second, err := svc.GetOrCreate(context.Background(), "student@iba-suk.edu.pk", "Renamed", "other.png", "google")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same record identity, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Student" || second.Picture != "pic.png" {
		t.Fatalf("expected existing profile to stay unchanged, got name=%q picture=%q", second.Name, second.Picture)
	}
	if repo.Count() != 1 {
		t.Fatalf("expected exactly one record, got %d", repo.Count())
	}
}

func TestGetOrCreateNormalizesEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo)

	user, err := svc.GetOrCreate(context.Background(), "  Student@IBA-SUK.edu.pk ", "Student", "", "google")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if user.Email != "student@iba-suk.edu.pk" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestGetOrCreateResolvesInsertRaceToWinner(t *testing.T) {
	winner := &User{ID: uuid.New(), Email: "student@iba-suk.edu.pk"}
	var finds int
	repo := &repoStub{
		findByEmail: func(ctx context.Context, email string) (*User, error) {
			finds++
			if finds == 1 {
				return nil, nil
			}
			return winner, nil
		},
		create: func(ctx context.Context, user User) (User, error) {
			return User{}, ErrEmailExists
		},
	}
	svc := newTestService(repo)

	user, err := svc.GetOrCreate(context.Background(), "student@iba-suk.edu.pk", "Student", "", "google")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if user.ID != winner.ID {
		t.Fatal("expected loser to receive the winner's record")
	}
}

func TestGetOrCreateConcurrentFirstLogins(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo)

	const callers = 8
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			user, err := svc.GetOrCreate(context.Background(), "student@iba-suk.edu.pk", "Student", "", "google")
			if err != nil {
				t.Errorf("GetOrCreate returned error: %v", err)
				return
			}
			ids[i] = user.ID
		}(i)
	}
	wg.Wait()

	if repo.Count() != 1 {
		t.Fatalf("expected exactly one stored record, got %d", repo.Count())
	}
	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatal("expected every caller to observe the same record")
		}
	}
}

func TestCompleteLoginIssuesValidToken(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo)

	claims := &GoogleClaims{
		Sub:     "sub-123",
		Email:   "Student@iba-suk.edu.pk",
		Name:    "Student",
		Picture: "pic.png",
	}

	user, token, err := svc.CompleteLogin(context.Background(), claims)
	if err != nil {
		t.Fatalf("CompleteLogin returned error: %v", err)
	}
	if user.Email != "student@iba-suk.edu.pk" || user.Provider != "google" {
		t.Fatalf("unexpected user %+v", user)
	}

	authenticated, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authenticated.ID != user.ID {
		t.Fatal("expected Authenticate to resolve the logged-in user")
	}
}

func TestCompleteLoginRejectsForeignDomainWithoutCreating(t *testing.T) {
	var created bool
	repo := &repoStub{
		create: func(ctx context.Context, user User) (User, error) {
			created = true
			return user, nil
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.CompleteLogin(context.Background(), &GoogleClaims{Email: "user@gmail.com"})
	if !errors.Is(err, ErrDomainRejected) {
		t.Fatalf("expected ErrDomainRejected, got %v", err)
	}
	if created {
		t.Fatal("expected no directory record for a rejected domain")
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())

	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticateRejectsMissingUser(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())

	token, err := svc.tokens.Issue("ghost@iba-suk.edu.pk")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthenticateReappliesDomainPolicy(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())

	// A token minted before a policy change must still pass the current policy.
	token, err := svc.tokens.Issue("user@gmail.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrDomainRejected) {
		t.Fatalf("expected ErrDomainRejected, got %v", err)
	}
}

package http

import (
	"context"
	"io"
	"time"

	"log/slog"

	"campusgate/internal/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuth builds a real auth service over the in-memory directory.
func newTestAuth() (*auth.Service, *auth.InMemoryRepository, *auth.TokenCodec) {
	repo := auth.NewInMemoryRepository()
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	policy := auth.NewDomainPolicy([]string{"iba-suk.edu.pk"})
	return auth.NewService(repo, codec, policy), repo, codec
}

// seedUser inserts a directory record and returns a session token for it.
func seedUser(svc *auth.Service, email string) (*auth.User, string, error) {
	return svc.CompleteLogin(context.Background(), &auth.GoogleClaims{
		Sub:     "sub-test",
		Email:   email,
		Name:    "Test Student",
		Picture: "pic.png",
	})
}

type fakeGoogleVerifier struct {
	verifyClaims   *auth.GoogleClaims
	verifyErr      error
	exchangeClaims *auth.GoogleClaims
	exchangeErr    error
	exchangeCalled bool
	lastRedirect   string
}

func (f *fakeGoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*auth.GoogleClaims, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyClaims, nil
}

func (f *fakeGoogleVerifier) ExchangeCode(ctx context.Context, code, redirectURI string) (*auth.GoogleClaims, error) {
	f.exchangeCalled = true
	f.lastRedirect = redirectURI
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeClaims, nil
}

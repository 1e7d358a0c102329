package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Username string
	Password string
}

type LoginResult struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// Verifier checks credentials against the backing store. Authentication is
// delegated: whoever the database accepts is a valid user.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error

	// Authenticate validates the session and refreshes its activity
	// timestamp. Inactivity beyond the configured timeout expires it.
	Authenticate(ctx context.Context, token string) (*Session, error)
	// Check reports validity and remaining lifetime WITHOUT refreshing
	// activity, so polling it cannot keep a session alive.
	Check(ctx context.Context, token string) Status

	SetFilter(ctx context.Context, token, key, value string) error
	Filters(ctx context.Context, token string) map[string]string
	ClearFilters(ctx context.Context, token string) error
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
)

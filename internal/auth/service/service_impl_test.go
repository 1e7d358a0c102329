package service

import (
	"context"
	"testing"
	"time"

	"github.com/healthdeck/healthdeck/internal/auth/domain"
	"github.com/healthdeck/healthdeck/internal/clock"
	"github.com/healthdeck/healthdeck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	cfg := config.Config{
		DBType:                "sqlite",
		SessionTimeoutMinutes: 30,
	}
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		Config:   cfg,
		Log:      zap.NewNop(),
		Clock:    fake,
		Verifier: NewVerifier(cfg),
	})
	return svc, fake
}

func login(t *testing.T, svc domain.Service) *domain.LoginResult {
	t.Helper()
	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Username: "analyst",
		Password: "secret",
	})
	require.NoError(t, err)
	return result
}

func TestLogin_RejectsEmptyCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, domain.LoginRequest{Username: "analyst"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_RefreshesActivity(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	result := login(t, svc)

	// Each authenticated request pushes the expiry window forward.
	fake.Advance(20 * time.Minute)
	_, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	fake.Advance(20 * time.Minute)
	session, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "analyst", session.Username)
}

func TestAuthenticate_ExpiresAfterInactivity(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	result := login(t, svc)

	fake.Advance(31 * time.Minute)
	_, err := svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, domain.ErrSessionExpired)

	// The expired session is gone, not recoverable.
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCheck_DoesNotRefreshActivity(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	result := login(t, svc)

	fake.Advance(20 * time.Minute)
	status := svc.Check(ctx, result.Token)
	require.True(t, status.Valid)
	assert.Equal(t, int64(600), status.RemainingSeconds)

	// Polling Check did not extend the window: 35 minutes of inactivity
	// since login still kills the session.
	fake.Advance(15 * time.Minute)
	_, err := svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestCheck_UnknownTokenIsInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	status := svc.Check(context.Background(), "no-such-token")
	assert.False(t, status.Valid)
	assert.Zero(t, status.RemainingSeconds)
}

func TestFilters_Lifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	result := login(t, svc)

	require.NoError(t, svc.SetFilter(ctx, result.Token, "customer", "acme"))
	require.NoError(t, svc.SetFilter(ctx, result.Token, "month", "2025-03-01"))

	filters := svc.Filters(ctx, result.Token)
	assert.Equal(t, map[string]string{"customer": "acme", "month": "2025-03-01"}, filters)

	// The returned map is a copy; mutating it does not touch the session.
	filters["customer"] = "globex"
	assert.Equal(t, "acme", svc.Filters(ctx, result.Token)["customer"])

	require.NoError(t, svc.ClearFilters(ctx, result.Token))
	assert.Empty(t, svc.Filters(ctx, result.Token))
}

func TestLogout_RemovesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	result := login(t, svc)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err := svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

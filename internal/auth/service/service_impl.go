package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/healthdeck/healthdeck/internal/auth/domain"
	"github.com/healthdeck/healthdeck/internal/clock"
	"github.com/healthdeck/healthdeck/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Clock    clock.Clock
	Verifier domain.Verifier
}

// Service keeps sessions in process memory, keyed by opaque token. Expiry
// is driven by the stored last-activity timestamp, not by timers.
type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	verifier domain.Verifier
	timeout  time.Duration

	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func New(p Params) domain.Service {
	timeout := time.Duration(p.Config.SessionTimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Service{
		log:      p.Log.Named("auth.service"),
		clock:    p.Clock,
		verifier: p.Verifier,
		timeout:  timeout,
		sessions: make(map[string]*domain.Session),
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	if err := s.verifier.Verify(ctx, req.Username, req.Password); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		Token:        uuid.NewString(),
		Username:     req.Username,
		Password:     req.Password,
		LastActivity: now,
		Filters:      make(map[string]string),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	s.log.Info("login", zap.String("username", req.Username))
	return &domain.LoginResult{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: now.Add(s.timeout),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[token]; ok {
		s.log.Info("logout", zap.String("username", session.Username))
		delete(s.sessions, token)
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if now.Sub(session.LastActivity) > s.timeout {
		delete(s.sessions, token)
		return nil, domain.ErrSessionExpired
	}

	session.LastActivity = now
	view := *session
	view.Filters = copyFilters(session.Filters)
	return &view, nil
}

func (s *Service) Check(ctx context.Context, token string) domain.Status {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return domain.Status{}
	}
	remaining := s.timeout - now.Sub(session.LastActivity)
	if remaining <= 0 {
		delete(s.sessions, token)
		return domain.Status{}
	}
	return domain.Status{
		Valid:            true,
		RemainingSeconds: int64(remaining.Seconds()),
	}
}

func (s *Service) SetFilter(ctx context.Context, token, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Filters[key] = value
	return nil
}

func (s *Service) Filters(ctx context.Context, token string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	return copyFilters(session.Filters)
}

func (s *Service) ClearFilters(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Filters = make(map[string]string)
	return nil
}

func copyFilters(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package client

import (
	"context"
	"sync"

	"teamhub/internal/logger"

	"go.uber.org/zap"
)

// AuthStatus описывает состояние сессии
type AuthStatus int

const (
	StatusUninitialized AuthStatus = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s AuthStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// AuthStore владеет текущей сессией: восстанавливает ее с диска,
// выполняет вход/регистрацию/выход.
type AuthStore struct {
	client   *Client
	sessions *SessionStore
	log      *logger.Logger

	mu     sync.RWMutex
	status AuthStatus
	user   *User
}

func NewAuthStore(client *Client, sessions *SessionStore, log *logger.Logger) *AuthStore {
	return &AuthStore{
		client:   client,
		sessions: sessions,
		log:      log,
		status:   StatusUninitialized,
	}
}

func (s *AuthStore) Status() AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// CurrentUser returns a copy of the authenticated profile, or nil.
func (s *AuthStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Initialize восстанавливает сохраненную сессию и проверяет ее на
// сервере. Любая ошибка переводит стор в anonymous, а не падает.
func (s *AuthStore) Initialize(ctx context.Context) {
	s.setStatus(StatusLoading)

	session, err := s.sessions.Load()
	if err != nil || session == nil {
		if err != nil {
			s.log.Warn("failed to load persisted session", zap.Error(err))
		}
		s.becomeAnonymous()
		return
	}

	s.client.SetToken(session.Token)
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.Warn("persisted session rejected", zap.Error(err))
		_ = s.sessions.Clear()
		s.becomeAnonymous()
		return
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	s.user = user
	s.mu.Unlock()
}

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return err
	}
	s.establish(result)
	return nil
}

func (s *AuthStore) Register(ctx context.Context, name, email, password, department string) error {
	result, err := s.client.Register(ctx, name, email, password, department)
	if err != nil {
		s.log.Warn("registration failed", zap.String("email", email), zap.Error(err))
		return err
	}
	s.establish(result)
	return nil
}

// Logout always clears local state. The remote sign-out is best effort:
// a failure there must not leave the session authenticated.
func (s *AuthStore) Logout(ctx context.Context) {
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warn("remote sign-out failed, clearing local session anyway", zap.Error(err))
	}
	if err := s.sessions.Clear(); err != nil {
		s.log.Warn("failed to clear persisted session", zap.Error(err))
	}
	s.client.SetToken("")
	s.becomeAnonymous()
}

func (s *AuthStore) establish(result *AuthResult) {
	s.client.SetToken(result.Token)
	if err := s.sessions.Save(&Session{Token: result.Token, User: result.User}); err != nil {
		s.log.Warn("failed to persist session", zap.Error(err))
	}

	s.mu.Lock()
	s.status = StatusAuthenticated
	user := result.User
	s.user = &user
	s.mu.Unlock()
}

func (s *AuthStore) becomeAnonymous() {
	s.mu.Lock()
	s.status = StatusAnonymous
	s.user = nil
	s.mu.Unlock()
}

func (s *AuthStore) setStatus(status AuthStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

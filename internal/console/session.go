package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrEmptyToken is returned when logging in without a token
var ErrEmptyToken = errors.New("token must not be empty")

// TokenStore persists the bearer token
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Session tracks whether the console must send the user to /login. The
// client reports every 401 through RedirectToLogin.
type Session struct {
	tokens  TokenStore
	metrics *metrics.AppMetrics
	logger  zerolog.Logger

	mu        sync.Mutex
	needLogin bool
	redirects int
}

// NewSession returns a session over tokens
func NewSession(tokens TokenStore, m *metrics.AppMetrics, logger zerolog.Logger) *Session {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Session{tokens: tokens, metrics: m, logger: logger}
}

// RedirectToLogin marks the session as needing login. The token has
// already been cleared by the client. Concurrent 401s while a login is
// already pending count as one redirect.
func (s *Session) RedirectToLogin(ctx context.Context) {
	s.mu.Lock()
	if s.needLogin {
		s.mu.Unlock()
		return
	}
	s.needLogin = true
	s.redirects++
	s.mu.Unlock()

	s.metrics.RecordLoginRedirect(ctx)
	s.logger.Info().Msg("upstream rejected the access token, login required")
}

// LoginRequired reports whether a 401 was seen since the last login
func (s *Session) LoginRequired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needLogin
}

// Redirects is how many times login was requested
func (s *Session) Redirects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirects
}

// Login stores token and clears the login requirement
func (s *Session) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.tokens.Set(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.needLogin = false
	s.mu.Unlock()
	return nil
}

// Logout clears the stored token
func (s *Session) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// LoggedIn reports whether a token is stored
func (s *Session) LoggedIn(ctx context.Context) (bool, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Package session holds the bearer token and the global recovery path: when
// the API reports the session untrustworthy, every piece of persisted local
// state is wiped in one step.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/storage"
)

// Claims are the token fields the client cares about. The signature is the
// server's business; the client parses without verifying, purely to scope
// requests and notice expiry early.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Session struct {
	mu      sync.Mutex
	storage storage.Store
	logger  *zap.Logger
	onReset []func()
}

func New(st storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		storage: st,
		logger:  logger.Named("session"),
	}
}

// Token returns the persisted access token, if any.
func (s *Session) Token() (string, bool) {
	raw, ok := s.storage.Get(storage.KeyAccessToken)
	if !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (s *Session) SetToken(token string) error {
	return s.storage.Set(storage.KeyAccessToken, []byte(token))
}

// Claims parses the stored token without signature verification.
func (s *Session) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, ErrNoToken
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformedToken.WithCause(err)
	}
	return claims, nil
}

// UserID returns the token subject, empty when signed out.
func (s *Session) UserID() string {
	claims, err := s.Claims()
	if err != nil {
		return ""
	}
	return claims.Subject
}

// IsAdmin reports whether the token carries the admin role.
func (s *Session) IsAdmin() bool {
	claims, err := s.Claims()
	if err != nil {
		return false
	}
	return claims.Role == "admin"
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never expire client-side.
func (s *Session) Expired() bool {
	claims, err := s.Claims()
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// OnReset registers a hook fired after the session is torn down.
func (s *Session) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReset = append(s.onReset, fn)
}

// Reset is the session-error recovery path: clear all persisted local
// state, cart included, then notify hooks so the caller can route back to
// the landing view.
func (s *Session) Reset() error {
	s.logger.Warn("session reset, clearing persisted state")

	if err := s.storage.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	hooks := make([]func(), len(s.onReset))
	copy(hooks, s.onReset)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}

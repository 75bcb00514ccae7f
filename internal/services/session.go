package services

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/models"
)

// Session maps an opaque token to a snapshot of the authenticated user.
// Expiry is check-then-use: lookups never refresh it.
type Session struct {
	Token     string
	User      models.User
	ExpiresAt time.Time
}

// Sessions is the in-process session store backing cookie auth. Sessions do
// not survive a restart.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	logger *zap.Logger

	byToken map[string]Session
}

func NewSessions(ttl time.Duration, logger *zap.Logger) *Sessions {
	return &Sessions{
		ttl:     ttl,
		logger:  logger,
		byToken: make(map[string]Session),
	}
}

// Create mints an unguessable token for the user and stores the session.
func (s *Sessions) Create(user models.User) (Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     hex.EncodeToString(raw),
		User:      user,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.byToken[session.Token] = session
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("email", user.Email), zap.String("role", user.Role))
	return session, nil
}

// Get resolves a token to its session. Expired entries behave as absent.
func (s *Sessions) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byToken[token]
	if !ok || time.Now().After(session.ExpiresAt) {
		return Session{}, false
	}
	return session, true
}

// Delete removes the session; subsequent lookups fail.
func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}

// SweepExpired evicts sessions past their expiry so the map stays bounded.
func (s *Sessions) SweepExpired() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.byToken {
		if now.After(session.ExpiresAt) {
			delete(s.byToken, token)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed
}

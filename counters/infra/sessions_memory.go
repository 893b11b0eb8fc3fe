package infra

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"counter-gateway/counters/domain"
)

// MemorySessionStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time // zero = não expira
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Issue(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: exp}
	s.mu.Unlock()
	return token, nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return "", domain.ErrNoSession
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return "", domain.ErrNoSession
	}
	return sess.userID, nil
}

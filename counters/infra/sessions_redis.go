package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"counter-gateway/counters/domain"
)

// RedisSessionStore guarda sessões como chaves com TTL
// (`<prefix>:<token>` -> userID). Sem TTL a sessão não expira.
type RedisSessionStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisSessionOption func(*RedisSessionStore)

func WithSessionPrefix(prefix string) RedisSessionOption {
	return func(s *RedisSessionStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisSessionStore(rdb *redis.Client, opts ...RedisSessionOption) *RedisSessionStore {
	s := &RedisSessionStore{
		rdb:    rdb,
		prefix: "session",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue implementa domain.SessionStore.
func (s *RedisSessionStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, s.prefix+":"+token, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Lookup implementa domain.SessionStore. Token desconhecido ou expirado
// vira ErrNoSession.
func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNoSession
	}
	userID, err := s.rdb.Get(ctx, s.prefix+":"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("looking up session: %w", err)
	}
	return userID, nil
}

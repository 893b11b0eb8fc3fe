package infra

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"counter-gateway/counters/domain"
)

// Campos do hash de contadores.
const (
	fieldSitePV = "site_pv"
	// fieldSiteUVBase é a base de visitantes únicos vinda do último sync.
	// O snapshot soma base + PFCOUNT dos visitantes vistos localmente
	// desde então.
	fieldSiteUVBase = "site_uv_base"
	fieldPagePV     = "page_pv:"
)

// RedisCounterStore guarda os contadores de cada domínio em um hash
// (`<prefix>:<domínio>`) e os visitantes únicos em um HyperLogLog
// (`<prefix>:<domínio>:uv`). Escritas usam pipeline.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisCounterOption func(*RedisCounterStore)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(s *RedisCounterStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisCounterStore(rdb *redis.Client, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{
		rdb:    rdb,
		prefix: "counter",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCounterStore) hashKey(domainName string) string {
	return s.prefix + ":" + domainName
}

func (s *RedisCounterStore) uvKey(domainName string) string {
	return s.prefix + ":" + domainName + ":uv"
}

// RecordVisit implementa domain.CounterStore.
func (s *RedisCounterStore) RecordVisit(ctx context.Context, v domain.Visit) error {
	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.hashKey(v.Domain), fieldSitePV, 1)
	if v.Path != "" {
		pipe.HIncrBy(ctx, s.hashKey(v.Domain), fieldPagePV+v.Path, 1)
	}
	if v.VisitorID != "" {
		pipe.PFAdd(ctx, s.uvKey(v.Domain), v.VisitorID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// SetSiteUV implementa o write-through do sync: o valor do Busuanzi vira a
// nova base e o HyperLogLog local é zerado. Visitante recorrente pode ser
// recontado até o próximo sync; o Busuanzi é a fonte de verdade e corrige
// na próxima rodada.
func (s *RedisCounterStore) SetSiteUV(ctx context.Context, domainName string, value int64) error {
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, s.hashKey(domainName), fieldSiteUVBase, value)
	pipe.Del(ctx, s.uvKey(domainName))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisCounterStore) SetSitePV(ctx context.Context, domainName string, value int64) error {
	return s.rdb.HSet(ctx, s.hashKey(domainName), fieldSitePV, value).Err()
}

// Snapshot implementa domain.CounterStore.
func (s *RedisCounterStore) Snapshot(ctx context.Context, domainName string) (domain.CounterSnapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.hashKey(domainName)).Result()
	if err != nil {
		return domain.CounterSnapshot{}, err
	}
	local, err := s.rdb.PFCount(ctx, s.uvKey(domainName)).Result()
	if err != nil {
		return domain.CounterSnapshot{}, err
	}

	snap := domain.CounterSnapshot{SiteUV: local}
	for f, raw := range fields {
		n, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			continue
		}
		switch {
		case f == fieldSitePV:
			snap.SitePV = n
		case f == fieldSiteUVBase:
			snap.SiteUV += n
		case strings.HasPrefix(f, fieldPagePV):
			if snap.PagePV == nil {
				snap.PagePV = make(map[string]int64)
			}
			snap.PagePV[strings.TrimPrefix(f, fieldPagePV)] = n
		}
	}
	return snap, nil
}

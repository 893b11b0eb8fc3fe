package infra

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SyncThrottle é um token bucket por domínio para o endpoint de sync, com
// cache por chave e limpeza periódica. Um chamador reemitindo o pedido em
// cima da hora recebe 429 em vez de martelar o Busuanzi.
type SyncThrottle struct {
	mu           sync.Mutex
	entries      map[string]*throttleEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type ThrottleOption func(*SyncThrottle)

func WithThrottleIdleTTL(d time.Duration) ThrottleOption {
	return func(t *SyncThrottle) { t.idleTTL = d }
}

func WithThrottleCleanupEvery(d time.Duration) ThrottleOption {
	return func(t *SyncThrottle) { t.cleanupEvery = d }
}

func NewSyncThrottle(rps float64, burst int, opts ...ThrottleOption) *SyncThrottle {
	t := &SyncThrottle{
		entries:      make(map[string]*throttleEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      30 * time.Minute,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Allow decide se um sync para o domínio pode rodar agora.
func (t *SyncThrottle) Allow(domainName string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	ent, ok := t.entries[domainName]
	if !ok {
		ent = &throttleEntry{lim: rate.NewLimiter(t.rps, t.burst)}
		t.entries[domainName] = ent
	}
	ent.lastSeen = now
	return ent.lim.Allow()
}

func (t *SyncThrottle) Cleanup() {
	cutoff := time.Now().Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	for k, ent := range t.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que remove domínios inativos
// periodicamente. Pare cancelando o contexto.
func (t *SyncThrottle) StartJanitor(ctx context.Context) {
	if t.cleanupEvery <= 0 {
		return
	}

	tick := time.NewTicker(t.cleanupEvery)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				t.Cleanup()
			}
		}
	}()
}

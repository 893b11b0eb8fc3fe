package infra

import (
	"context"
	"sync"

	"counter-gateway/counters/domain"
)

// MemoryCounterStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memoryCounters
}

type memoryCounters struct {
	sitePV     int64
	siteUVBase int64
	visitors   map[string]struct{}
	pagePV     map[string]int64
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]*memoryCounters)}
}

func (s *MemoryCounterStore) get(domainName string) *memoryCounters {
	c, ok := s.entries[domainName]
	if !ok {
		c = &memoryCounters{
			visitors: make(map[string]struct{}),
			pagePV:   make(map[string]int64),
		}
		s.entries[domainName] = c
	}
	return c
}

func (s *MemoryCounterStore) RecordVisit(_ context.Context, v domain.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(v.Domain)
	c.sitePV++
	if v.Path != "" {
		c.pagePV[v.Path]++
	}
	if v.VisitorID != "" {
		c.visitors[v.VisitorID] = struct{}{}
	}
	return nil
}

// SetSiteUV espelha a semântica do store redis: vira a nova base e zera os
// visitantes vistos localmente.
func (s *MemoryCounterStore) SetSiteUV(_ context.Context, domainName string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(domainName)
	c.siteUVBase = value
	c.visitors = make(map[string]struct{})
	return nil
}

func (s *MemoryCounterStore) SetSitePV(_ context.Context, domainName string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(domainName).sitePV = value
	return nil
}

func (s *MemoryCounterStore) Snapshot(_ context.Context, domainName string) (domain.CounterSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(domainName)
	snap := domain.CounterSnapshot{
		SiteUV: c.siteUVBase + int64(len(c.visitors)),
		SitePV: c.sitePV,
	}
	if len(c.pagePV) > 0 {
		snap.PagePV = make(map[string]int64, len(c.pagePV))
		for p, n := range c.pagePV {
			snap.PagePV[p] = n
		}
	}
	return snap, nil
}

package infra

import (
	"context"
	"sort"
	"sync"
	"time"

	"counter-gateway/counters/domain"
)

// MemoryDomainStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
type MemoryDomainStore struct {
	mu      sync.Mutex
	domains map[string]domain.Domain
}

func NewMemoryDomainStore() *MemoryDomainStore {
	return &MemoryDomainStore{domains: make(map[string]domain.Domain)}
}

func (s *MemoryDomainStore) Create(_ context.Context, d domain.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[d.Name]; ok {
		return domain.ErrDomainTaken
	}
	s.domains[d.Name] = d
	return nil
}

func (s *MemoryDomainStore) FindByName(_ context.Context, name string) (domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[name]
	if !ok {
		return domain.Domain{}, domain.ErrDomainNotFound
	}
	return d, nil
}

// FindByNameAndOwner mantém a regra da consulta combinada: dono errado é
// indistinguível de inexistente.
func (s *MemoryDomainStore) FindByNameAndOwner(_ context.Context, name, ownerID string) (domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[name]
	if !ok || d.OwnerID != ownerID {
		return domain.Domain{}, domain.ErrDomainNotFound
	}
	return d, nil
}

func (s *MemoryDomainStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Domain
	for _, d := range s.domains {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryDomainStore) MarkVerified(_ context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[name]
	if !ok {
		return domain.ErrDomainNotFound
	}
	d.Verified = true
	d.VerifiedAt = at
	s.domains[name] = d
	return nil
}

package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"counter-gateway/counters/domain"
)

// VisitService é o caminho público de contagem: registra um acesso e devolve
// o snapshot atualizado.
//
// Contar não exige domínio verificado — só registrado. Assim os contadores
// já acumulam enquanto o dono configura o DNS; a verificação gateia apenas o
// sync e a leitura pública.
type VisitService struct {
	Domains  domain.DomainStore
	Counters domain.CounterStore
}

// RecordVisit registra um page view para o caminho e o visitante informados.
func (s VisitService) RecordVisit(ctx context.Context, domainName, path, visitorID string) (domain.CounterSnapshot, error) {
	name, err := NormalizeDomainName(domainName)
	if err != nil {
		return domain.CounterSnapshot{}, err
	}
	if path == "" {
		path = "/"
	}

	d, err := s.Domains.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return domain.CounterSnapshot{}, err
		}
		return domain.CounterSnapshot{}, fmt.Errorf("domain lookup for %q: %w", name, err)
	}

	visit := domain.Visit{Domain: d.Name, Path: path, VisitorID: visitorID}
	if err := s.Counters.RecordVisit(ctx, visit); err != nil {
		return domain.CounterSnapshot{}, fmt.Errorf("record visit for %q: %w", d.Name, err)
	}

	snap, err := s.Counters.Snapshot(ctx, d.Name)
	if err != nil {
		return domain.CounterSnapshot{}, fmt.Errorf("counter snapshot for %q: %w", d.Name, err)
	}
	return snap, nil
}

// PublicSnapshot devolve os contadores de um domínio verificado.
// Domínio desconhecido ou ainda não verificado → ErrDomainNotFound, para não
// expor registros em andamento.
func (s VisitService) PublicSnapshot(ctx context.Context, domainName string) (domain.CounterSnapshot, error) {
	name, err := NormalizeDomainName(domainName)
	if err != nil {
		return domain.CounterSnapshot{}, err
	}

	d, err := s.Domains.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return domain.CounterSnapshot{}, err
		}
		return domain.CounterSnapshot{}, fmt.Errorf("domain lookup for %q: %w", name, err)
	}
	if !d.Verified {
		return domain.CounterSnapshot{}, domain.ErrDomainNotFound
	}

	snap, err := s.Counters.Snapshot(ctx, d.Name)
	if err != nil {
		return domain.CounterSnapshot{}, fmt.Errorf("counter snapshot for %q: %w", d.Name, err)
	}
	return snap, nil
}

// VisitorID deriva um identificador estável de visitante a partir de IP e
// User-Agent, sem guardar o IP cru.
func VisitorID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip) + "|" + strings.TrimSpace(userAgent)))
	return hex.EncodeToString(sum[:16])
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"counter-gateway/counters/domain"
)

// DomainService concentra registro, listagem e verificação de posse de
// domínios. A verificação em si (consulta DNS) fica atrás de
// domain.OwnershipVerifier.
type DomainService struct {
	Domains  domain.DomainStore
	Verifier domain.OwnershipVerifier
}

// Register cria o registro do domínio para o usuário com um token de
// verificação novo. O domínio nasce não verificado.
func (s DomainService) Register(ctx context.Context, callerID, name string) (domain.Domain, error) {
	if strings.TrimSpace(callerID) == "" {
		return domain.Domain{}, domain.ErrNoSession
	}
	name, err := NormalizeDomainName(name)
	if err != nil {
		return domain.Domain{}, err
	}

	d := domain.Domain{
		Name:        name,
		OwnerID:     callerID,
		VerifyToken: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Domains.Create(ctx, d); err != nil {
		if errors.Is(err, domain.ErrDomainTaken) {
			return domain.Domain{}, err
		}
		return domain.Domain{}, fmt.Errorf("create domain %q: %w", name, err)
	}
	return d, nil
}

// Verify consulta o verificador externo e, se o token for encontrado, marca
// o domínio como verificado. Reverificar um domínio já verificado é no-op.
//
// A busca é a mesma consulta combinada nome+dono do sync: quem não é dono
// recebe ErrDomainNotFound, nunca uma pista de que o domínio existe.
func (s DomainService) Verify(ctx context.Context, callerID, name string) (domain.Domain, error) {
	if strings.TrimSpace(callerID) == "" {
		return domain.Domain{}, domain.ErrNoSession
	}
	name, err := NormalizeDomainName(name)
	if err != nil {
		return domain.Domain{}, err
	}

	d, err := s.Domains.FindByNameAndOwner(ctx, name, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return domain.Domain{}, err
		}
		return domain.Domain{}, fmt.Errorf("domain lookup for %q: %w", name, err)
	}
	if d.Verified {
		return d, nil
	}

	if err := s.Verifier.Verify(ctx, d); err != nil {
		if errors.Is(err, domain.ErrVerificationFailed) {
			return domain.Domain{}, err
		}
		return domain.Domain{}, fmt.Errorf("verify domain %q: %w", name, err)
	}

	now := time.Now().UTC()
	if err := s.Domains.MarkVerified(ctx, d.Name, now); err != nil {
		return domain.Domain{}, fmt.Errorf("mark domain %q verified: %w", name, err)
	}
	d.Verified = true
	d.VerifiedAt = now
	return d, nil
}

// List devolve os domínios do usuário.
func (s DomainService) List(ctx context.Context, callerID string) ([]domain.Domain, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, domain.ErrNoSession
	}
	ds, err := s.Domains.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return ds, nil
}

// NormalizeDomainName valida e canoniza um nome de domínio vindo do usuário:
// minúsculas, sem espaços, sem esquema/caminho, com ao menos um ponto.
func NormalizeDomainName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", domain.ErrDomainRequired
	}
	if strings.ContainsAny(name, "/\\ :@?#") || !strings.Contains(name, ".") ||
		strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return "", fmt.Errorf("%w: invalid domain name", domain.ErrDomainRequired)
	}
	return name, nil
}

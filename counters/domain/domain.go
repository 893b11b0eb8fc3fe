package domain

import (
	"context"
	"errors"
	"time"
)

// Domain representa um site registrado por um usuário para contagem de visitas.
//
// Invariante: um sync só pode ser pedido pelo dono do domínio, e só depois
// que Verified = true.
type Domain struct {
	Name    string
	OwnerID string

	Verified bool
	// VerifyToken é o valor esperado no registro TXT de verificação.
	VerifyToken string

	CreatedAt  time.Time
	VerifiedAt time.Time
}

// Erros sentinela do domínio. O adapter HTTP traduz cada um para um status.
var (
	// ErrNoSession indica requisição sem sessão válida.
	ErrNoSession = errors.New("no valid session")

	// ErrDomainRequired indica requisição sem o campo domainName.
	ErrDomainRequired = errors.New("domain name is required")

	// ErrDomainNotFound cobre tanto "não existe" quanto "existe mas não é seu".
	// Os dois casos são propositalmente indistinguíveis para não vazar a
	// existência de domínios de terceiros.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrDomainNotVerified indica que o domínio ainda não passou pela
	// verificação de posse.
	ErrDomainNotVerified = errors.New("domain must be verified before syncing")

	// ErrDomainTaken indica tentativa de registrar um nome já registrado.
	ErrDomainTaken = errors.New("domain already registered")

	// ErrVerificationFailed indica que o token esperado não foi encontrado.
	ErrVerificationFailed = errors.New("domain verification failed")
)

// DomainStore é a estratégia de persistência para domínios registrados.
//
// FindByNameAndOwner é propositalmente uma consulta única (nome + dono):
// nunca "existe? então é dono?" em dois passos.
type DomainStore interface {
	Create(ctx context.Context, d Domain) error
	FindByName(ctx context.Context, name string) (Domain, error)
	FindByNameAndOwner(ctx context.Context, name, ownerID string) (Domain, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Domain, error)
	MarkVerified(ctx context.Context, name string, at time.Time) error
}

// OwnershipVerifier checa, fora do processo, se o dono controla o domínio
// (ex: registro TXT no DNS contendo o token).
type OwnershipVerifier interface {
	Verify(ctx context.Context, d Domain) error
}

// SessionStore resolve um token de sessão para o id do usuário dono.
// Implementações podem armazenar em redis, memória, etc.
type SessionStore interface {
	Lookup(ctx context.Context, token string) (userID string, err error)
	Issue(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
}

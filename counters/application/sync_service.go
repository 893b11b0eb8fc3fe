package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"counter-gateway/counters/domain"
)

// Mensagens expostas ao chamador no corpo da resposta.
const (
	SyncedMessage = "Data synced successfully from Busuanzi"

	// FallbackSyncMessage é usada quando a fonte externa falha sem
	// fornecer uma mensagem própria.
	FallbackSyncMessage = "Busuanzi is unavailable right now, try again later"
)

// SyncService orquestra um pedido de re-sincronização de contadores.
//
// A orquestração é sem estado e idempotente: cada chamada re-busca da fonte
// externa e relê o armazenamento, sem lock entre chamadas concorrentes e sem
// retry automático (retry é responsabilidade do chamador reemitir o pedido).
type SyncService struct {
	Domains  domain.DomainStore
	Source   domain.CounterSource
	Counters domain.CounterStore
}

// RequestSync valida as pré-condições em ordem (curto-circuito na primeira
// falha) e então delega à fonte externa.
//
// Falha de pré-condição vira erro sentinela; sync incompleto NÃO é erro —
// volta como SyncOutcome{Synced: false} para o chamador distinguir "pedido
// rejeitado" de "pedido válido mas fonte indisponível".
func (s SyncService) RequestSync(ctx context.Context, callerID, domainName string) (domain.SyncOutcome, error) {
	if strings.TrimSpace(callerID) == "" {
		return domain.SyncOutcome{}, domain.ErrNoSession
	}
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return domain.SyncOutcome{}, domain.ErrDomainRequired
	}

	d, err := s.Domains.FindByNameAndOwner(ctx, domainName, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return domain.SyncOutcome{}, err
		}
		return domain.SyncOutcome{}, fmt.Errorf("domain lookup for %q: %w", domainName, err)
	}
	if !d.Verified {
		return domain.SyncOutcome{}, domain.ErrDomainNotVerified
	}

	res := s.Source.ForceSyncAll(ctx, d)
	if !res.Success {
		msg := res.Err
		if msg == "" {
			msg = FallbackSyncMessage
		}
		return domain.SyncOutcome{
			Domain:  d.Name,
			Synced:  false,
			Message: msg,
			Details: &domain.SyncValues{SiteUV: res.SiteUV, SitePV: res.SitePV},
		}, nil
	}

	// A leitura acontece depois do sync de propósito: o campo counters da
	// resposta reflete o estado do armazenamento agora, não os valores que
	// a busca devolveu.
	snap, err := s.Counters.Snapshot(ctx, d.Name)
	if err != nil {
		return domain.SyncOutcome{}, fmt.Errorf("counter snapshot for %q after sync: %w", d.Name, err)
	}

	return domain.SyncOutcome{
		Domain:       d.Name,
		Synced:       true,
		Message:      SyncedMessage,
		Counters:     &snap,
		SyncedValues: &domain.SyncValues{SiteUV: res.SiteUV, SitePV: res.SitePV},
	}, nil
}

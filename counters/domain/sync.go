package domain

import "context"

// SyncResult é o resultado cru de uma tentativa de sync contra a fonte
// externa de contadores.
//
// Success=false cobre tanto falha total quanto parcial: um ponteiro nil
// indica que aquele contador não foi atualizado nesta tentativa.
type SyncResult struct {
	Success bool
	SiteUV  *CounterValue
	SitePV  *CounterValue
	// Err é a mensagem de falha reportada pela fonte externa, se houver.
	Err string
}

// SyncValues agrupa os dois contadores que o sync atualiza.
type SyncValues struct {
	SiteUV *CounterValue `json:"siteUv,omitempty"`
	SitePV *CounterValue `json:"sitePv,omitempty"`
}

// SyncOutcome é o desfecho estruturado de um pedido de sync autorizado.
//
// É uma variante etiquetada, não erro: Synced=true carrega Counters (estado
// do armazenamento) e SyncedValues; Synced=false carrega Details (o que a
// tentativa incompleta conseguiu) e Message. Falhas de pré-condição não
// chegam aqui — viram erros sentinela.
type SyncOutcome struct {
	Domain  string
	Synced  bool
	Message string

	// Preenchidos apenas quando Synced=true.
	Counters     *CounterSnapshot
	SyncedValues *SyncValues

	// Preenchido apenas quando Synced=false.
	Details *SyncValues
}

// CounterSource é a fonte externa (Busuanzi) de valores de contadores.
//
// ForceSyncAll tenta atualizar site_uv e site_pv do domínio. A chamada tem
// superfície real de falha: a fonte pode estar fora, limitada, ou responder
// parcialmente. A implementação deve devolver resultado estruturado, nunca
// panic; erro de transporte vira SyncResult{Success: false, Err: ...}.
type CounterSource interface {
	ForceSyncAll(ctx context.Context, d Domain) SyncResult
}

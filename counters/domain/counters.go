package domain

import "context"

// CounterValue é o valor de um contador nomeado em um instante.
type CounterValue struct {
	Value int64 `json:"value"`
}

// CounterSnapshot é a leitura do estado atual dos contadores de um domínio,
// direto do armazenamento local.
//
// Invariante: depois de um sync, o snapshot reflete o que o armazenamento
// tem no momento da leitura, não necessariamente os valores que o sync
// acabou de buscar (escritas concorrentes podem intercalar).
type CounterSnapshot struct {
	SiteUV int64 `json:"siteUv"`
	SitePV int64 `json:"sitePv"`

	// PagePV acumula page views por caminho.
	PagePV map[string]int64 `json:"pagePv,omitempty"`
}

// Visit é um acesso individual registrado pelo endpoint público de contagem.
type Visit struct {
	Domain string
	Path   string
	// VisitorID identifica o visitante para fins de contagem de únicos
	// (hash de IP + User-Agent; nunca o IP cru).
	VisitorID string
}

// CounterStore é a estratégia de persistência para os contadores.
//
// SetSiteUV/SetSitePV são usados pelo write-through do sync: sobrescrevem a
// base do contador com o valor vindo do Busuanzi. RecordVisit é o caminho de
// contagem local.
type CounterStore interface {
	Snapshot(ctx context.Context, domain string) (CounterSnapshot, error)
	SetSiteUV(ctx context.Context, domain string, v int64) error
	SetSitePV(ctx context.Context, domain string, v int64) error
	RecordVisit(ctx context.Context, visit Visit) error
}

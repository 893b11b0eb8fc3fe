package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"counter-gateway/counters/domain"
)

// Métricas que o sync atualiza, na grafia da API do Busuanzi.
const (
	metricSiteUV = "site_uv"
	metricSitePV = "site_pv"
)

// BusuanziClient implementa domain.CounterSource contra a API HTTP do
// Busuanzi (ou um espelho compatível).
//
// Cada métrica é buscada em uma chamada própria e gravada no CounterStore
// assim que chega (write-through). É isso que dá a superfície de falha
// parcial: uma métrica pode atualizar e a outra não.
//
// As chamadas de saída são ritmadas por um rate.Limiter compartilhado, para
// não estourar o limite do serviço público.
type BusuanziClient struct {
	baseURL  string
	counters domain.CounterStore

	hc      *http.Client
	limiter *rate.Limiter
}

type BusuanziOption func(*BusuanziClient)

func WithHTTPClient(hc *http.Client) BusuanziOption {
	return func(c *BusuanziClient) { c.hc = hc }
}

func WithRequestTimeout(d time.Duration) BusuanziOption {
	return func(c *BusuanziClient) { c.hc.Timeout = d }
}

func WithRateLimit(rps float64, burst int) BusuanziOption {
	return func(c *BusuanziClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func NewBusuanziClient(baseURL string, counters domain.CounterStore, opts ...BusuanziOption) *BusuanziClient {
	c := &BusuanziClient{
		baseURL:  baseURL,
		counters: counters,
		hc:       &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(2, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForceSyncAll implementa domain.CounterSource.
//
// Nunca devolve erro de transporte como error: qualquer falha vira
// SyncResult{Success: false}, com Err carregando a primeira mensagem de
// falha. Ponteiro nil no resultado = aquela métrica não foi atualizada.
func (c *BusuanziClient) ForceSyncAll(ctx context.Context, d domain.Domain) domain.SyncResult {
	res := domain.SyncResult{Success: true}

	uv, err := c.syncMetric(ctx, d.Name, metricSiteUV)
	if err != nil {
		res.Success = false
		res.Err = err.Error()
	} else {
		res.SiteUV = &domain.CounterValue{Value: uv}
	}

	pv, err := c.syncMetric(ctx, d.Name, metricSitePV)
	if err != nil {
		res.Success = false
		if res.Err == "" {
			res.Err = err.Error()
		}
	} else {
		res.SitePV = &domain.CounterValue{Value: pv}
	}

	return res
}

// syncMetric busca uma métrica e grava no armazenamento local.
// Erro de escrita também conta como falha da métrica.
func (c *BusuanziClient) syncMetric(ctx context.Context, domainName, metric string) (int64, error) {
	v, err := c.fetchMetric(ctx, domainName, metric)
	if err != nil {
		return 0, err
	}

	switch metric {
	case metricSiteUV:
		err = c.counters.SetSiteUV(ctx, domainName, v)
	case metricSitePV:
		err = c.counters.SetSitePV(ctx, domainName, v)
	}
	if err != nil {
		return 0, fmt.Errorf("store %s for %s: %v", metric, domainName, err)
	}
	return v, nil
}

func (c *BusuanziClient) fetchMetric(ctx context.Context, domainName, metric string) (int64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("busuanzi %s: %v", metric, err)
		}
	}

	u := fmt.Sprintf("%s/api/metric?name=%s&domain=%s", c.baseURL, metric, url.QueryEscape(domainName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("busuanzi %s: %v", metric, err)
	}
	// O Busuanzi identifica o site pelo Referer.
	req.Header.Set("Referer", "https://"+domainName+"/")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("busuanzi %s: %v", metric, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Value int64  `json:"value"`
		Error string `json:"error"`
	}
	if resp.StatusCode != http.StatusOK {
		// Tenta aproveitar a mensagem estruturada do serviço, se houver.
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return 0, fmt.Errorf("busuanzi %s: %s", metric, body.Error)
		}
		return 0, fmt.Errorf("busuanzi %s: unexpected status %d", metric, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("busuanzi %s: decode response: %v", metric, err)
	}
	return body.Value, nil
}

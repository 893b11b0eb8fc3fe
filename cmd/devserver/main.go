package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"counter-gateway/counters"
	"counter-gateway/counters/application"
	"counter-gateway/counters/domain"
	"counter-gateway/counters/infra"
)

// Servidor de desenvolvimento: tudo em memória, sem redis, sem sqlite e com
// uma fonte Busuanzi de mentira. Sobe já com um domínio verificado
// (example.com, dono "dev") e imprime um token de sessão pronto para usar.
func main() {
	counterStore := infra.NewMemoryCounterStore()
	sessionStore := infra.NewMemorySessionStore()
	domainStore := infra.NewMemoryDomainStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seed := domain.Domain{
		Name:        "example.com",
		OwnerID:     "dev",
		Verified:    true,
		VerifyToken: "dev-token",
		CreatedAt:   time.Now().UTC(),
		VerifiedAt:  time.Now().UTC(),
	}
	if err := domainStore.Create(ctx, seed); err != nil {
		log.Fatalf("seed domain: %v", err)
	}

	token, err := sessionStore.Issue(ctx, "dev", 0)
	if err != nil {
		log.Fatalf("seed session: %v", err)
	}

	api := &counters.API{
		Sessions: sessionStore,
		Sync:     application.SyncService{Domains: domainStore, Source: fakeBusuanzi{counters: counterStore}, Counters: counterStore},
		Domains:  application.DomainService{Domains: domainStore, Verifier: alwaysVerifies{}},
		Visits:   application.VisitService{Domains: domainStore, Counters: counterStore},
	}

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("dev server listening on %s", addr)
	log.Printf("seeded domain example.com (owner dev)")
	log.Printf("session token: %s", token)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// fakeBusuanzi devolve valores crescentes e grava no store, como o cliente
// real faria.
type fakeBusuanzi struct {
	counters domain.CounterStore
}

func (f fakeBusuanzi) ForceSyncAll(ctx context.Context, d domain.Domain) domain.SyncResult {
	uv := time.Now().Unix() % 1000
	pv := uv * 5
	if err := f.counters.SetSiteUV(ctx, d.Name, uv); err != nil {
		return domain.SyncResult{Err: err.Error()}
	}
	if err := f.counters.SetSitePV(ctx, d.Name, pv); err != nil {
		return domain.SyncResult{SiteUV: &domain.CounterValue{Value: uv}, Err: err.Error()}
	}
	return domain.SyncResult{
		Success: true,
		SiteUV:  &domain.CounterValue{Value: uv},
		SitePV:  &domain.CounterValue{Value: pv},
	}
}

type alwaysVerifies struct{}

func (alwaysVerifies) Verify(context.Context, domain.Domain) error { return nil }

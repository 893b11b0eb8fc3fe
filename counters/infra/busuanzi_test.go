package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"counter-gateway/counters/domain"
)

func testDomain() domain.Domain {
	return domain.Domain{Name: "example.com", OwnerID: "u1", Verified: true}
}

func TestBusuanziClient_FullSync(t *testing.T) {
	var referers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referers = append(referers, r.Header.Get("Referer"))
		switch r.URL.Query().Get("name") {
		case "site_uv":
			fmt.Fprint(w, `{"value": 100}`)
		case "site_pv":
			fmt.Fprint(w, `{"value": 500}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewMemoryCounterStore()
	c := NewBusuanziClient(srv.URL, store)

	res := c.ForceSyncAll(context.Background(), testDomain())
	if !res.Success {
		t.Fatalf("expected success, got err %q", res.Err)
	}
	if res.SiteUV == nil || res.SiteUV.Value != 100 {
		t.Fatalf("expected siteUv=100, got %+v", res.SiteUV)
	}
	if res.SitePV == nil || res.SitePV.Value != 500 {
		t.Fatalf("expected sitePv=500, got %+v", res.SitePV)
	}

	// write-through: os valores têm que estar no armazenamento
	snap, err := store.Snapshot(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SiteUV != 100 || snap.SitePV != 500 {
		t.Fatalf("expected stored 100/500, got %+v", snap)
	}

	for _, ref := range referers {
		if ref != "https://example.com/" {
			t.Fatalf("expected Referer to carry the domain, got %q", ref)
		}
	}
}

func TestBusuanziClient_PartialFailureKeepsTheGoodMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "site_uv" {
			fmt.Fprint(w, `{"value": 100}`)
			return
		}
		w.WriteHeader(http.StatusGatewayTimeout)
		fmt.Fprint(w, `{"error": "timeout"}`)
	}))
	defer srv.Close()

	store := NewMemoryCounterStore()
	c := NewBusuanziClient(srv.URL, store)

	res := c.ForceSyncAll(context.Background(), testDomain())
	if res.Success {
		t.Fatalf("expected partial failure")
	}
	if res.SiteUV == nil || res.SiteUV.Value != 100 {
		t.Fatalf("expected siteUv to survive the partial failure, got %+v", res.SiteUV)
	}
	if res.SitePV != nil {
		t.Fatalf("expected sitePv to be nil, got %+v", res.SitePV)
	}
	if !strings.Contains(res.Err, "timeout") {
		t.Fatalf("expected the upstream message in Err, got %q", res.Err)
	}

	// a métrica boa foi gravada mesmo com a outra falhando
	snap, err := store.Snapshot(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SiteUV != 100 {
		t.Fatalf("expected stored siteUv=100, got %+v", snap)
	}
}

func TestBusuanziClient_TotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewBusuanziClient(srv.URL, NewMemoryCounterStore())

	res := c.ForceSyncAll(context.Background(), testDomain())
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.SiteUV != nil || res.SitePV != nil {
		t.Fatalf("expected no values, got %+v / %+v", res.SiteUV, res.SitePV)
	}
	if !strings.Contains(res.Err, "unexpected status 503") {
		t.Fatalf("expected status in Err, got %q", res.Err)
	}
}

func TestBusuanziClient_UnreachableHost(t *testing.T) {
	// porta fechada: erro de transporte vira resultado estruturado
	c := NewBusuanziClient("http://127.0.0.1:1", NewMemoryCounterStore())

	res := c.ForceSyncAll(context.Background(), testDomain())
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Err == "" {
		t.Fatalf("expected an error message")
	}
}

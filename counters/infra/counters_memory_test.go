package infra

import (
	"context"
	"testing"

	"counter-gateway/counters/domain"
)

func TestMemoryCounterStore_VisitsAccumulate(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	visits := []domain.Visit{
		{Domain: "example.com", Path: "/", VisitorID: "a"},
		{Domain: "example.com", Path: "/", VisitorID: "a"},
		{Domain: "example.com", Path: "/posts/1", VisitorID: "b"},
	}
	for _, v := range visits {
		if err := s.RecordVisit(ctx, v); err != nil {
			t.Fatalf("record visit: %v", err)
		}
	}

	snap, err := s.Snapshot(ctx, "example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SitePV != 3 {
		t.Fatalf("expected sitePv=3, got %d", snap.SitePV)
	}
	// visitante repetido conta uma vez
	if snap.SiteUV != 2 {
		t.Fatalf("expected siteUv=2, got %d", snap.SiteUV)
	}
	if snap.PagePV["/"] != 2 || snap.PagePV["/posts/1"] != 1 {
		t.Fatalf("unexpected page pv: %+v", snap.PagePV)
	}
}

func TestMemoryCounterStore_SyncOverridesBase(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	if err := s.RecordVisit(ctx, domain.Visit{Domain: "example.com", Path: "/", VisitorID: "a"}); err != nil {
		t.Fatalf("record visit: %v", err)
	}

	// o sync vira a nova base e zera os visitantes locais
	if err := s.SetSiteUV(ctx, "example.com", 100); err != nil {
		t.Fatalf("set site uv: %v", err)
	}
	if err := s.SetSitePV(ctx, "example.com", 500); err != nil {
		t.Fatalf("set site pv: %v", err)
	}

	snap, err := s.Snapshot(ctx, "example.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SiteUV != 100 || snap.SitePV != 500 {
		t.Fatalf("expected 100/500 after sync, got %+v", snap)
	}

	// visitante novo depois do sync soma em cima da base
	if err := s.RecordVisit(ctx, domain.Visit{Domain: "example.com", Path: "/", VisitorID: "c"}); err != nil {
		t.Fatalf("record visit: %v", err)
	}
	snap, _ = s.Snapshot(ctx, "example.com")
	if snap.SiteUV != 101 {
		t.Fatalf("expected siteUv=101, got %d", snap.SiteUV)
	}
	if snap.SitePV != 501 {
		t.Fatalf("expected sitePv=501, got %d", snap.SitePV)
	}
}

func TestMemoryCounterStore_DomainsAreIsolated(t *testing.T) {
	s := NewMemoryCounterStore()
	ctx := context.Background()

	if err := s.RecordVisit(ctx, domain.Visit{Domain: "a.com", Path: "/", VisitorID: "v"}); err != nil {
		t.Fatalf("record visit: %v", err)
	}

	snap, err := s.Snapshot(ctx, "b.com")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.SitePV != 0 || snap.SiteUV != 0 {
		t.Fatalf("expected empty counters for b.com, got %+v", snap)
	}
}

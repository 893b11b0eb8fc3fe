package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"counter-gateway/counters/domain"
)

func TestMemorySessionStore_IssueAndLookup(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	token, err := s.Issue(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	userID, err := s.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestMemorySessionStore_UnknownToken(t *testing.T) {
	s := NewMemorySessionStore()

	_, err := s.Lookup(context.Background(), "bogus")
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	token, err := s.Issue(ctx, "u1", time.Millisecond)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(3 * time.Millisecond)

	_, err = s.Lookup(ctx, token)
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected expired session to be ErrNoSession, got %v", err)
	}
}

package infra

import (
	"testing"
	"time"
)

func TestSyncThrottle_LowRateRejectsSecondRequest(t *testing.T) {
	th := NewSyncThrottle(0.001, 1)

	if !th.Allow("u1:example.com") {
		t.Fatalf("expected first request to pass")
	}
	if th.Allow("u1:example.com") {
		t.Fatalf("expected second immediate request to be blocked (burst=1)")
	}
}

func TestSyncThrottle_KeysAreIndependent(t *testing.T) {
	th := NewSyncThrottle(0.001, 1)

	if !th.Allow("u1:example.com") {
		t.Fatalf("expected first key to pass")
	}
	// outro domínio do mesmo usuário tem bucket próprio
	if !th.Allow("u1:other.com") {
		t.Fatalf("expected second key to pass")
	}
}

func TestSyncThrottle_CleanupResetsIdleKeys(t *testing.T) {
	th := NewSyncThrottle(0.001, 1, WithThrottleIdleTTL(2*time.Millisecond), WithThrottleCleanupEvery(0))

	if !th.Allow("u1:example.com") {
		t.Fatalf("expected first request to pass")
	}
	time.Sleep(4 * time.Millisecond)

	th.Cleanup()

	// bucket recriado depois da limpeza
	if !th.Allow("u1:example.com") {
		t.Fatalf("expected request to pass after cleanup")
	}
}

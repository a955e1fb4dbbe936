package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

var testKey = domain.SessionKey{TenantID: "taldykorgan", Channel: "telegram", UserID: "42"}

func TestAllowWithinLimit(t *testing.T) {
	l := New(NewMemoryStore(), 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, testKey) {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, testKey) {
		t.Error("call 6 should be rejected")
	}
}

func TestRejectionDoesNotResetWindow(t *testing.T) {
	l := New(NewMemoryStore(), 2, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, testKey)
	l.Allow(ctx, testKey)

	// Further calls stay rejected within the same window.
	for i := 0; i < 3; i++ {
		if l.Allow(ctx, testKey) {
			t.Fatalf("call after limit should stay rejected (attempt %d)", i+1)
		}
	}
}

func TestWindowReset(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	l := New(store, 2, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, testKey)
	l.Allow(ctx, testKey)
	if l.Allow(ctx, testKey) {
		t.Fatal("third call in window should be rejected")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, testKey) {
		t.Error("call after window elapsed should be allowed again")
	}
}

func TestDifferentUsersDoNotContend(t *testing.T) {
	l := New(NewMemoryStore(), 1, time.Minute)
	ctx := context.Background()

	other := domain.SessionKey{TenantID: "taldykorgan", Channel: "telegram", UserID: "43"}
	if !l.Allow(ctx, testKey) {
		t.Fatal("first user should be allowed")
	}
	if !l.Allow(ctx, other) {
		t.Error("second user has an independent window")
	}
}

type failingStore struct{}

func (failingStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("backend unreachable")
}

func TestFailsOpenOnBackendError(t *testing.T) {
	l := New(failingStore{}, 1, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), testKey) {
			t.Fatal("limiter must fail open when the backend errors")
		}
	}
}

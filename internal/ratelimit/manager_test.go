package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestManagerMemoryBackend(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := NewManager(Config{Window: time.Second, MaxRequests: 2}, func() time.Time {
		return now
	}, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, errAllow := manager.Allow(ctx, "caller")
		if errAllow != nil || !result.Allowed {
			t.Fatalf("call %d: expected admission, got %v %v", i, result.Allowed, errAllow)
		}
	}
	if result, _ := manager.Allow(ctx, "caller"); result.Allowed {
		t.Fatalf("expected rejection at ceiling")
	}

	now = now.Add(1001 * time.Millisecond)
	if result, _ := manager.Allow(ctx, "caller"); !result.Allowed {
		t.Fatalf("expected admission after window elapsed")
	}
}

func TestManagerRedisMisconfiguredFallsBack(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Redis enabled but without an address: every check must degrade to the
	// in-memory window instead of failing.
	manager := NewManager(Config{Window: time.Second, MaxRequests: 1, RedisEnabled: true}, func() time.Time {
		return now
	}, nil)

	ctx := context.Background()
	if result, errAllow := manager.Allow(ctx, "caller"); errAllow != nil || !result.Allowed {
		t.Fatalf("expected memory fallback admission, got %v %v", result.Allowed, errAllow)
	}
	if result, _ := manager.Allow(ctx, "caller"); result.Allowed {
		t.Fatalf("expected memory fallback rejection")
	}
	if !manager.isBreakerActive(now) {
		t.Fatalf("expected breaker tripped after redis error")
	}
	if manager.isBreakerActive(now.Add(redisBreakerDuration + time.Second)) {
		t.Fatalf("expected breaker cleared after cooldown")
	}
}

func TestManagerZeroLimitAdmitsEverything(t *testing.T) {
	manager := NewManager(Config{Window: time.Second}, nil, nil)
	for i := 0; i < 5; i++ {
		if result, _ := manager.Allow(context.Background(), "caller"); !result.Allowed {
			t.Fatalf("zero ceiling should disable limiting")
		}
	}
}

package action

import (
	"testing"
	"time"
)

func TestMemoryRateLimiter_AllowsWithinBudget(t *testing.T) {
	limiter := NewMemoryRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow("conn1")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected hit %d to be allowed", i)
		}
	}
}

func TestMemoryRateLimiter_RejectsOverBudget(t *testing.T) {
	limiter := NewMemoryRateLimiter(2, time.Minute)
	limiter.Allow("conn1")
	limiter.Allow("conn1")
	allowed, err := limiter.Allow("conn1")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Fatal("expected the 3rd hit within the window to be rejected")
	}
}

func TestMemoryRateLimiter_WindowExpires(t *testing.T) {
	limiter := NewMemoryRateLimiter(1, 20*time.Millisecond)
	allowed, _ := limiter.Allow("conn1")
	if !allowed {
		t.Fatal("first hit should be allowed")
	}
	allowed, _ = limiter.Allow("conn1")
	if allowed {
		t.Fatal("second immediate hit should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	allowed, _ = limiter.Allow("conn1")
	if !allowed {
		t.Fatal("hit after window expiry should be allowed")
	}
}

func TestMemoryRateLimiter_PerConnectionIsolation(t *testing.T) {
	limiter := NewMemoryRateLimiter(1, time.Minute)
	allowed1, _ := limiter.Allow("conn1")
	allowed2, _ := limiter.Allow("conn2")
	if !allowed1 || !allowed2 {
		t.Fatal("distinct connections should not share a budget")
	}
}

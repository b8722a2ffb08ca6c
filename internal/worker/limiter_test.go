package worker

import (
	"context"
	"testing"
)

func TestNewLimiter(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiterWait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "ollama"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiterPerProviderBuckets(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("openai") {
		t.Error("first request should pass")
	}
	if limiter.Allow("openai") {
		t.Error("burst exhausted, second request should fail")
	}
	if !limiter.Allow("ollama") {
		t.Error("a different provider has its own bucket")
	}
}

func TestLimiterSetProviderRate(t *testing.T) {
	limiter := NewLimiter(10, 10)

	limiter.SetProviderRate("openai", 0.1, 1)

	if !limiter.Allow("openai") {
		t.Error("first request should pass")
	}
	if limiter.Allow("openai") {
		t.Error("second request should fail under the strict rate")
	}
	if !limiter.Allow("template") {
		t.Error("other providers keep the fast default")
	}
}

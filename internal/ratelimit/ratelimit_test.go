package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amishk599/vacancywatch/internal/model"
)

func TestWait_SameHost_EnforcesMinDelay(t *testing.T) {
	limiter := NewHostRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "qsamruk.kz"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "qsamruk.kz"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentHost_NoCrossBlocking(t *testing.T) {
	limiter := NewHostRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "qsamruk.kz"); err != nil {
		t.Fatalf("first host wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "example.com"); err != nil {
		t.Fatalf("second host wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected near-instant wait for another host, got %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	limiter := NewHostRateLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx, "qsamruk.kz"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero delay waited %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewHostRateLimiter(5 * time.Second) // long delay
	if err := limiter.Wait(context.Background(), "qsamruk.kz"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := limiter.Wait(ctx, "qsamruk.kz")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// --- Mock for RateLimitedFetcher test ---

type recordingFetcher struct {
	calls []string
}

func (f *recordingFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	return "<html></html>", nil
}

func TestRateLimitedFetcher_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewHostRateLimiter(100 * time.Millisecond)
	inner := &recordingFetcher{}
	fetcher := NewRateLimitedFetcher(inner, limiter)
	ctx := context.Background()
	const url = "https://qsamruk.kz/company/too-pgu-turkestan"

	if _, err := fetcher.Fetch(ctx, url); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	start := time.Now()
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if len(inner.calls) != 2 || body != "<html></html>" {
		t.Fatalf("inner calls = %v, body = %q", inner.calls, body)
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}

func TestRateLimitedFetcher_CancelledWaitIsFetchError(t *testing.T) {
	limiter := NewHostRateLimiter(5 * time.Second)
	inner := &recordingFetcher{}
	fetcher := NewRateLimitedFetcher(inner, limiter)
	const url = "https://qsamruk.kz/company/too-pgu-turkestan"

	if _, err := fetcher.Fetch(context.Background(), url); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fetcher.Fetch(ctx, url)

	var fe *model.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(inner.calls) != 1 {
		t.Errorf("inner called %d times, want 1", len(inner.calls))
	}
}

package ratelimit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNoopWait(t *testing.T) {
	t.Parallel()

	if err := (Noop{}).Wait(context.Background(), "feed"); err != nil {
		t.Fatalf("expected noop wait to pass, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Noop{}).Wait(ctx, "feed"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestWindowKey(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(nil, RedisConfig{Window: time.Minute, KeyPrefix: "test"})
	at := time.Date(2026, 5, 10, 15, 0, 10, 0, time.UTC)

	first := l.windowKey("feed", at)
	sameWindow := l.windowKey("feed", at.Add(40*time.Second))
	nextWindow := l.windowKey("feed", at.Add(time.Minute))

	if first != sameWindow {
		t.Fatalf("expected same bucket, got %s and %s", first, sameWindow)
	}
	if first == nextWindow {
		t.Fatalf("expected a new bucket after the window, got %s", nextWindow)
	}
	if l.limit != 10 {
		t.Fatalf("expected default limit 10, got %d", l.limit)
	}
}

func TestRedisLimiterAgainstServer(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	l := NewRedisLimiter(rdb, RedisConfig{Limit: 2, Window: time.Minute, KeyPrefix: "test:" + uuid.NewString()})
	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "feed")
		if err != nil || !allowed {
			t.Fatalf("request %d: allowed=%v err=%v", i, allowed, err)
		}
	}
	allowed, err := l.Allow(ctx, "feed")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatalf("expected third request in window to be rejected")
	}
}

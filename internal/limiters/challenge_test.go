package limiters

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func testChallengeConfig() ChallengeConfig {
	return ChallengeConfig{
		EnableIdentityThrottle: true,
		EnableIPThrottle:       true,
		MaxAttempts:            3,
		Window:                 time.Minute,
	}
}

func TestChallengeLimiterBlocksPastMaxAttempts(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewChallengeLimiter(rdb, testChallengeConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Reserve(ctx, "alice", "10.0.0.1"); err != nil {
			t.Fatalf("attempt %d rejected early: %v", i, err)
		}
	}

	if err := l.Reserve(ctx, "alice", ""); !errors.Is(err, ErrChallengeRateLimited) {
		t.Fatalf("expected identity throttle, got %v", err)
	}
	if err := l.Reserve(ctx, "bob", "10.0.0.1"); !errors.Is(err, ErrChallengeRateLimited) {
		t.Fatalf("expected ip throttle, got %v", err)
	}
	if err := l.Reserve(ctx, "bob", "10.0.0.2"); err != nil {
		t.Fatalf("unrelated identity and ip must pass, got %v", err)
	}
}

func TestChallengeLimiterConcurrentBurst(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewChallengeLimiter(rdb, testChallengeConfig())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		granted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := l.Reserve(ctx, "alice", "10.0.0.1"); err == nil {
				granted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if n := granted.Load(); n != 3 {
		t.Fatalf("expected 3 attempts granted, got %d", n)
	}
}

func TestChallengeLimiterResetClearsIdentityOnly(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewChallengeLimiter(rdb, testChallengeConfig())
	ctx := context.Background()

	if err := l.Reserve(ctx, "alice", "10.0.0.1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := l.Reset(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if mr.Exists("rca:alice") {
		t.Fatal("expected identity counter to be cleared")
	}
	if !mr.Exists("rcai:10.0.0.1") {
		t.Fatal("expected ip counter to remain")
	}
}

func TestChallengeLimiterWindowExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	l := NewChallengeLimiter(rdb, testChallengeConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = l.Reserve(ctx, "alice", "")
	}
	if err := l.Reserve(ctx, "alice", ""); !errors.Is(err, ErrChallengeRateLimited) {
		t.Fatalf("expected throttle, got %v", err)
	}

	mr.FastForward(l.Cooldown() + time.Second)
	if err := l.Reserve(ctx, "alice", ""); err != nil {
		t.Fatalf("expected window to reopen, got %v", err)
	}
}

func TestChallengeLimiterNilSafe(t *testing.T) {
	var l *ChallengeLimiter
	ctx := context.Background()

	if err := l.Reserve(ctx, "alice", "ip"); err != nil {
		t.Fatalf("nil reserve: %v", err)
	}
	if err := l.Reset(ctx, "alice"); err != nil {
		t.Fatalf("nil reset: %v", err)
	}
	if NewChallengeLimiter(nil, testChallengeConfig()) != nil {
		t.Fatal("expected nil limiter without redis")
	}
}

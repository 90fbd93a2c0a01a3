package rate

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

func TestWindowReserveBlocksPastLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	w := NewWindow(rdb, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := w.Reserve(ctx, "k"); err != nil {
			t.Fatalf("reserve %d: unexpected error %v", i, err)
		}
	}

	if err := w.Reserve(ctx, "k"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestWindowReserveConcurrentBurst(t *testing.T) {
	const (
		limit    = 5
		attempts = 100
	)
	_, rdb := newTestRedis(t)
	w := NewWindow(rdb, limit, time.Minute)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		granted atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := w.Reserve(ctx, "burst"); err == nil {
				granted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if n := granted.Load(); n != limit {
		t.Fatalf("expected exactly %d reservations granted, got %d", limit, n)
	}
}

func TestWindowSetsTTLOnFirstHitOnly(t *testing.T) {
	mr, rdb := newTestRedis(t)
	w := NewWindow(rdb, 5, time.Minute)
	ctx := context.Background()

	if _, err := w.Hit(ctx, "k"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	mr.FastForward(30 * time.Second)
	if _, err := w.Hit(ctx, "k"); err != nil {
		t.Fatalf("hit: %v", err)
	}

	if ttl := mr.TTL("k"); ttl != 30*time.Second {
		t.Fatalf("expected window ttl to keep counting down, got %v", ttl)
	}

	mr.FastForward(31 * time.Second)
	if mr.Exists("k") {
		t.Fatal("expected window to reset")
	}
}

func TestWindowClear(t *testing.T) {
	_, rdb := newTestRedis(t)
	w := NewWindow(rdb, 1, time.Minute)
	ctx := context.Background()

	if _, err := w.Hit(ctx, "a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if err := w.Clear(ctx, "a", "b"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := w.Reserve(ctx, "a"); err != nil {
		t.Fatalf("expected cleared key to pass, got %v", err)
	}
}

func TestWindowRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	w := NewWindow(rdb, 1, time.Minute)
	mr.Close()

	if _, err := w.Hit(context.Background(), "k"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := w.Reserve(context.Background(), "k"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is a Redis fixed-window counter shared by every key it touches.
type Window struct {
	redis  redis.UniversalClient
	limit  int
	period time.Duration
}

// NewWindow creates a [Window] allowing limit hits per period for each key.
func NewWindow(redisClient redis.UniversalClient, limit int, period time.Duration) *Window {
	return &Window{
		redis:  redisClient,
		limit:  limit,
		period: period,
	}
}

// Reserve counts one attempt against key and returns ErrRateLimited when the
// attempt takes the window past its limit. The counter is incremented before
// the comparison, so concurrent callers never share a slot.
func (w *Window) Reserve(ctx context.Context, key string) error {
	count, err := w.Hit(ctx, key)
	if err != nil {
		return err
	}
	if count > int64(w.limit) {
		return ErrRateLimited
	}
	return nil
}

// Hit records one hit for key and returns the count in the current window.
func (w *Window) Hit(ctx context.Context, key string) (int64, error) {
	count, err := w.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := w.redis.Expire(ctx, key, w.period).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

// Clear drops the counters for keys.
func (w *Window) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := w.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Period returns the window length.
func (w *Window) Period() time.Duration {
	return w.period
}

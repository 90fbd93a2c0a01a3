package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goRecover/internal/rate"
	"github.com/redis/go-redis/v9"
)

var (
	ErrChallengeRateLimited      = errors.New("challenge rate limited")
	ErrChallengeRedisUnavailable = errors.New("challenge redis unavailable")
)

type ChallengeConfig struct {
	EnableIdentityThrottle bool
	EnableIPThrottle       bool
	MaxAttempts            int
	Window                 time.Duration
}

// ChallengeLimiter counts answer verifications per identity and per client
// IP. A correct answer clears the identity counter.
type ChallengeLimiter struct {
	window *rate.Window
	config ChallengeConfig
}

func NewChallengeLimiter(redisClient redis.UniversalClient, cfg ChallengeConfig) *ChallengeLimiter {
	if redisClient == nil {
		return nil
	}
	return &ChallengeLimiter{
		window: rate.NewWindow(redisClient, cfg.MaxAttempts, cfg.Window),
		config: cfg,
	}
}

// Reserve counts one answer attempt against identity and ip before the
// answer is checked. It returns ErrChallengeRateLimited once either counter
// is past its budget for the current window.
func (l *ChallengeLimiter) Reserve(ctx context.Context, identity, ip string) error {
	if l == nil {
		return nil
	}
	for _, key := range l.keys(identity, ip) {
		if err := mapRateError(l.window.Reserve(ctx, key)); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the identity counter after a correct answer. The IP counter is
// left to expire with its window.
func (l *ChallengeLimiter) Reset(ctx context.Context, identity string) error {
	if l == nil || !l.config.EnableIdentityThrottle {
		return nil
	}
	return mapRateError(l.window.Clear(ctx, identityKey(identity)))
}

func (l *ChallengeLimiter) Cooldown() time.Duration {
	if l == nil {
		return 0
	}
	return l.window.Period()
}

func (l *ChallengeLimiter) keys(identity, ip string) []string {
	keys := make([]string, 0, 2)
	if l.config.EnableIdentityThrottle {
		keys = append(keys, identityKey(identity))
	}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, ipKey(ip))
	}
	return keys
}

func mapRateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrChallengeRateLimited
	case errors.Is(err, rate.ErrRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrChallengeRedisUnavailable, err)
	default:
		return err
	}
}

func identityKey(identity string) string {
	return "rca:" + identity
}

func ipKey(ip string) string {
	return "rcai:" + ip
}

package rate

import "errors"

var (
	// ErrRateLimited is returned once a key reaches its window limit.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

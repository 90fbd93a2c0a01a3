package goRecover

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goRecover/internal"
	"github.com/MrEthical07/goRecover/internal/cache"
)

// Config defines the process-wide recovery configuration.
//
// Config is read once by [Builder.Build]. Changing it afterwards has no effect
// on a built [Engine].
type Config struct {
	Cache     CacheConfig
	Challenge ChallengeConfig
	Password  PasswordConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig bounds the in-memory recovery token cache.
//
// Capacity caps resident tokens, IdleTimeout is the sliding expiry measured
// from the last read or write, and InitialCapacityHint only pre-sizes the
// underlying map. KeyPrefix namespaces token keys as "<prefix>_<identity>".
type CacheConfig struct {
	Capacity            int
	IdleTimeout         time.Duration
	InitialCapacityHint int
	KeyPrefix           string
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig controls the attempt limiter on answer verification. The
// limiter is only active when the builder is given a Redis client.
type ChallengeConfig struct {
	MaxAttempts            int
	Window                 time.Duration
	EnableIdentityThrottle bool
	EnableIPThrottle       bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries argon2id parameters for credential store adapters
// that hash answers and credentials with the password package.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: a 10000-entry token cache
// with a 12 hour idle timeout and a five-attempt, fifteen-minute answer
// limiter.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Capacity:            cache.DefaultCapacity,
			IdleTimeout:         cache.DefaultIdleTimeout,
			InitialCapacityHint: cache.DefaultInitialCapacityHint,
			KeyPrefix:           internal.DefaultTokenPrefix,
		},
		Challenge: ChallengeConfig{
			MaxAttempts:            5,
			Window:                 15 * time.Minute,
			EnableIdentityThrottle: true,
			EnableIPThrottle:       true,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	// Cache
	if c.Cache.Capacity <= 0 {
		return errors.New("Cache Capacity must be > 0")
	}
	if c.Cache.IdleTimeout <= 0 {
		return errors.New("Cache IdleTimeout must be > 0")
	}
	if c.Cache.InitialCapacityHint < 0 {
		return errors.New("Cache InitialCapacityHint must be >= 0")
	}
	if c.Cache.InitialCapacityHint > c.Cache.Capacity {
		return errors.New("Cache InitialCapacityHint must not exceed Capacity")
	}
	if strings.TrimSpace(c.Cache.KeyPrefix) == "" {
		return errors.New("Cache KeyPrefix must not be empty")
	}

	// Challenge limiter
	if c.Challenge.EnableIdentityThrottle || c.Challenge.EnableIPThrottle {
		if c.Challenge.MaxAttempts <= 0 {
			return errors.New("Challenge MaxAttempts must be > 0")
		}
		if c.Challenge.Window <= 0 {
			return errors.New("Challenge Window must be > 0")
		}
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

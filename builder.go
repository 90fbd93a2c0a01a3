package goRecover

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/goRecover/internal/cache"
	"github.com/MrEthical07/goRecover/internal/limiters"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder can be used for one Build only.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     CredentialStore
	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCredentialStore sets the identity backend. It is required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithRedis enables the answer attempt limiter. Without it answers are not
// throttled.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the clock used for token idle expiry and latency.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		logger:  logger,
		now:     now,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink, logger),
	}

	// -------- OPTIONAL STORE CAPABILITIES --------
	if v, ok := b.store.(CredentialVerifier); ok {
		engine.verifier = v
	}
	if c, ok := b.store.(IdentifierChecker); ok {
		engine.identifiers = c
	}

	// -------- TOKEN CACHE --------
	engine.tokens = cache.New[string, string](cache.Options{
		Capacity:            cfg.Cache.Capacity,
		IdleTimeout:         cfg.Cache.IdleTimeout,
		InitialCapacityHint: cfg.Cache.InitialCapacityHint,
		Now:                 now,
		Logger:              logger,
	})

	// -------- ANSWER LIMITER --------
	if b.redis != nil {
		engine.limiter = limiters.NewChallengeLimiter(b.redis, limiters.ChallengeConfig{
			EnableIdentityThrottle: cfg.Challenge.EnableIdentityThrottle,
			EnableIPThrottle:       cfg.Challenge.EnableIPThrottle,
			MaxAttempts:            cfg.Challenge.MaxAttempts,
			Window:                 cfg.Challenge.Window,
		})
	}

	b.built = true

	return engine, nil
}

package goRecover

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/goRecover/internal/cache"
	"github.com/MrEthical07/goRecover/internal/limiters"
)

// Engine runs the credential-recovery protocol: question lookup, answer
// verification with token issue, and single-use token redemption.
//
// Engine is safe for concurrent use. Build one with [New].
type Engine struct {
	config      Config
	store       CredentialStore
	verifier    CredentialVerifier
	identifiers IdentifierChecker
	tokens      *cache.Cache[string, string]
	limiter     *limiters.ChallengeLimiter
	audit       *auditDispatcher
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// Close flushes pending audit events. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenCacheEntries reports how many recovery tokens are resident, including
// idle ones not yet observed as expired.
func (e *Engine) TokenCacheEntries() int {
	if e == nil || e.tokens == nil {
		return 0
	}
	return e.tokens.Len()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if e == nil || e.logger == nil {
		return
	}
	e.logger.WarnContext(ctx, msg, args...)
}

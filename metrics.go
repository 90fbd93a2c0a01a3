package goRecover

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram in [Metrics].
type MetricID uint16

const (
	// MetricChallengeSelectSuccess counts questions returned by SelectChallenge.
	MetricChallengeSelectSuccess MetricID = iota
	// MetricChallengeSelectFailure counts SelectChallenge failures of any kind.
	MetricChallengeSelectFailure
	// MetricAnswerAccepted counts correct recovery answers.
	MetricAnswerAccepted
	// MetricAnswerRejected counts rejected answers, including throttled ones.
	MetricAnswerRejected
	// MetricTokenIssued counts recovery tokens written to the cache.
	MetricTokenIssued
	// MetricTokenRedeemSuccess counts tokens redeemed with a successful update.
	MetricTokenRedeemSuccess
	// MetricTokenRedeemFailure counts failed redemptions of any kind.
	MetricTokenRedeemFailure
	// MetricTokenReplay counts redemptions that found no live token.
	MetricTokenReplay
	// MetricCredentialUpdateFailed counts store updates that failed after redemption.
	MetricCredentialUpdateFailed
	// MetricCredentialChangeSuccess counts successful authenticated changes.
	MetricCredentialChangeSuccess
	// MetricCredentialChangeFailure counts failed authenticated changes.
	MetricCredentialChangeFailure
	// MetricIdentifierChecked counts identifier availability lookups.
	MetricIdentifierChecked
	// MetricRateLimitHit counts throttled answer verifications.
	MetricRateLimitHit
	// MetricRecoveryLatency is the latency histogram for recovery operations.
	MetricRecoveryLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// histogramBounds are the inclusive upper bounds of the first seven buckets.
// The eighth bucket collects everything slower.
var histogramBounds = [histBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free recovery counters. A nil or disabled Metrics
// ignores every call.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	latency       metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and enabled
// histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the recovery latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id. Histogram IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount || id == MetricRecoveryLatency {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the recovery latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricRecoveryLatency {
		return
	}
	atomic.AddUint64(&m.latency.buckets[bucketIndex(d)], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRecoveryLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.latency.buckets[i])
		}
		s.Histograms[MetricRecoveryLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	for i, bound := range histogramBounds {
		if d <= bound {
			return i
		}
	}
	return histBucketCount - 1
}

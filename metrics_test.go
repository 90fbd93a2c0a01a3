package goRecover

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricAnswerAccepted)

	if got := m.Value(MetricAnswerAccepted); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricTokenIssued)
	m.Inc(MetricTokenIssued)
	m.Inc(MetricTokenIssued)

	if got := m.Value(MetricTokenIssued); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricTokenIssued)
	m.Observe(MetricRecoveryLatency, time.Millisecond)
	if m.Value(MetricTokenIssued) != 0 || m.Enabled() {
		t.Fatal("expected nil metrics to be inert")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricTokenRedeemSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricTokenRedeemSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricRecoveryLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricRecoveryLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsHistogramDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricRecoveryLatency, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricRecoveryLatency]; ok {
		t.Fatal("expected no histogram when latency is disabled")
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricAnswerAccepted)
	m.Inc(MetricAnswerRejected)
	m.Inc(MetricAnswerRejected)
	m.Inc(MetricRecoveryLatency)
	m.Observe(MetricRecoveryLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricAnswerAccepted] != 1 {
		t.Fatalf("expected MetricAnswerAccepted=1 got %d", snap.Counters[MetricAnswerAccepted])
	}
	if snap.Counters[MetricAnswerRejected] != 2 {
		t.Fatalf("expected MetricAnswerRejected=2 got %d", snap.Counters[MetricAnswerRejected])
	}
	if _, ok := snap.Counters[MetricRecoveryLatency]; ok {
		t.Fatal("latency must not appear as a counter")
	}
	if snap.Histograms[MetricRecoveryLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricRecoveryLatency][0])
	}
}

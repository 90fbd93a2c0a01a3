package internaldefs

import (
	goRecover "github.com/MrEthical07/goRecover"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   goRecover.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram for exporters.
type HistogramDef struct {
	ID   goRecover.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goRecover.MetricChallengeSelectSuccess, Name: "gorecover_challenge_select_success_total", Help: "Recovery questions returned."},
	{ID: goRecover.MetricChallengeSelectFailure, Name: "gorecover_challenge_select_failure_total", Help: "Failed recovery question lookups."},
	{ID: goRecover.MetricAnswerAccepted, Name: "gorecover_answer_accepted_total", Help: "Correct recovery answers."},
	{ID: goRecover.MetricAnswerRejected, Name: "gorecover_answer_rejected_total", Help: "Rejected recovery answers, including throttled attempts."},
	{ID: goRecover.MetricTokenIssued, Name: "gorecover_token_issued_total", Help: "Recovery tokens issued."},
	{ID: goRecover.MetricTokenRedeemSuccess, Name: "gorecover_token_redeem_success_total", Help: "Recovery tokens redeemed with a credential update."},
	{ID: goRecover.MetricTokenRedeemFailure, Name: "gorecover_token_redeem_failure_total", Help: "Failed recovery token redemptions."},
	{ID: goRecover.MetricTokenReplay, Name: "gorecover_token_replay_total", Help: "Redemptions that found no live token."},
	{ID: goRecover.MetricCredentialUpdateFailed, Name: "gorecover_credential_update_failed_total", Help: "Credential store updates that failed after redemption."},
	{ID: goRecover.MetricCredentialChangeSuccess, Name: "gorecover_credential_change_success_total", Help: "Successful authenticated credential changes."},
	{ID: goRecover.MetricCredentialChangeFailure, Name: "gorecover_credential_change_failure_total", Help: "Failed authenticated credential changes."},
	{ID: goRecover.MetricIdentifierChecked, Name: "gorecover_identifier_checked_total", Help: "Identifier availability lookups."},
	{ID: goRecover.MetricRateLimitHit, Name: "gorecover_rate_limit_hit_total", Help: "Answer verifications denied by the attempt limiter."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goRecover.MetricRecoveryLatency, Name: "gorecover_recovery_latency_seconds", Help: "Recovery operation latency."},
}

const (
	AuditDroppedName = "gorecover_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped under dispatcher backpressure."

	TokenCacheEntriesName = "gorecover_token_cache_entries"
	TokenCacheEntriesHelp = "Recovery tokens resident in the cache."
)

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// engine bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names the per-bucket OTel gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling
// when the histogram is disabled.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

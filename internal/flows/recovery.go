package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type RecoveryMetrics struct {
	ChallengeSelectSuccess int
	ChallengeSelectFailure int
	AnswerAccepted         int
	AnswerRejected         int
	TokenIssued            int
	TokenRedeemSuccess     int
	TokenRedeemFailure     int
	TokenReplay            int
	CredentialUpdateFailed int
	RecoveryLatency        int
}

type RecoveryEvents struct {
	ChallengeSelect string
	ChallengeVerify string
	TokenRedeem     string
}

type RecoveryErrors struct {
	EngineNotReady         error
	InvalidArgument        error
	IdentityNotFound       error
	NoChallengeConfigured  error
	AnswerMismatch         error
	TokenMissingOrExpired  error
	TokenMismatch          error
	CredentialUpdateFailed error
	ChallengeRateLimited   error
	ChallengeUnavailable   error
	StoreUnavailable       error
}

type RecoveryDeps struct {
	TokenPrefix string

	ClientIPFromContext func(context.Context) string
	Now                 func() time.Time

	FindChallengeQuestion func(context.Context, string) (string, bool, error)
	VerifyAnswer          func(context.Context, string, string, string) (bool, error)
	UpdateCredential      func(context.Context, string, string) (bool, error)

	ReserveLimiter  func(context.Context, string, string) error
	ResetLimiter    func(context.Context, string) error
	MapLimiterError func(error) error

	GenerateToken func() (string, error)
	TokenKey      func(string, string) string
	TokensEqual   func(string, string) bool
	CachePut      func(string, string)
	// CacheCompareAndInvalidate removes the entry when the matcher accepts it,
	// atomically with the lookup. It reports (present, removed).
	CacheCompareAndInvalidate func(string, func(string) bool) (bool, bool)

	MetricInc      func(int)
	ObserveLatency func(int, time.Duration)
	EmitAudit      func(context.Context, string, bool, string, error, func() map[string]string)
	EmitRateLimit  func(context.Context, string, string, func() map[string]string)
	LogWarn        func(context.Context, string, ...any)

	Metrics RecoveryMetrics
	Events  RecoveryEvents
	Errors  RecoveryErrors
}

// RunSelectChallenge returns the recovery question registered for identity.
func RunSelectChallenge(ctx context.Context, identity string, deps RecoveryDeps) (string, error) {
	normalizeRecoveryDeps(&deps)
	defer observeSince(deps, deps.Now())

	if deps.FindChallengeQuestion == nil {
		return "", deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(identity) == "" {
		deps.MetricInc(deps.Metrics.ChallengeSelectFailure)
		deps.EmitAudit(ctx, deps.Events.ChallengeSelect, false, "", deps.Errors.InvalidArgument, reason("empty_identity"))
		return "", deps.Errors.InvalidArgument
	}

	question, found, err := deps.FindChallengeQuestion(ctx, identity)
	if err != nil {
		if isContextError(err) {
			return "", err
		}
		mapped := fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
		deps.MetricInc(deps.Metrics.ChallengeSelectFailure)
		deps.EmitAudit(ctx, deps.Events.ChallengeSelect, false, identity, mapped, nil)
		return "", mapped
	}
	if !found {
		deps.MetricInc(deps.Metrics.ChallengeSelectFailure)
		deps.EmitAudit(ctx, deps.Events.ChallengeSelect, false, identity, deps.Errors.IdentityNotFound, nil)
		return "", deps.Errors.IdentityNotFound
	}
	if strings.TrimSpace(question) == "" {
		deps.MetricInc(deps.Metrics.ChallengeSelectFailure)
		deps.EmitAudit(ctx, deps.Events.ChallengeSelect, false, identity, deps.Errors.NoChallengeConfigured, nil)
		return "", deps.Errors.NoChallengeConfigured
	}

	deps.MetricInc(deps.Metrics.ChallengeSelectSuccess)
	deps.EmitAudit(ctx, deps.Events.ChallengeSelect, true, identity, nil, nil)
	return question, nil
}

// RunVerifyChallengeAnswer checks the answer and, on a match, issues a fresh
// recovery token that replaces any token previously issued for identity.
func RunVerifyChallengeAnswer(ctx context.Context, identity, question, answer string, deps RecoveryDeps) (string, error) {
	normalizeRecoveryDeps(&deps)
	defer observeSince(deps, deps.Now())

	if deps.VerifyAnswer == nil ||
		deps.GenerateToken == nil ||
		deps.TokenKey == nil ||
		deps.CachePut == nil {
		return "", deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(identity) == "" {
		deps.MetricInc(deps.Metrics.AnswerRejected)
		deps.EmitAudit(ctx, deps.Events.ChallengeVerify, false, "", deps.Errors.InvalidArgument, reason("empty_identity"))
		return "", deps.Errors.InvalidArgument
	}

	ip := deps.ClientIPFromContext(ctx)
	if err := deps.ReserveLimiter(ctx, identity, ip); err != nil {
		mapped := deps.MapLimiterError(err)
		deps.MetricInc(deps.Metrics.AnswerRejected)
		deps.EmitAudit(ctx, deps.Events.ChallengeVerify, false, identity, mapped, nil)
		if errors.Is(mapped, deps.Errors.ChallengeRateLimited) {
			deps.EmitRateLimit(ctx, "challenge_verify", identity, func() map[string]string {
				return map[string]string{
					"identity": identity,
				}
			})
		}
		return "", mapped
	}

	ok, err := deps.VerifyAnswer(ctx, identity, question, answer)
	if err != nil {
		if isContextError(err) {
			return "", err
		}
		mapped := fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
		deps.MetricInc(deps.Metrics.AnswerRejected)
		deps.EmitAudit(ctx, deps.Events.ChallengeVerify, false, identity, mapped, nil)
		return "", mapped
	}
	if !ok {
		deps.MetricInc(deps.Metrics.AnswerRejected)
		deps.EmitAudit(ctx, deps.Events.ChallengeVerify, false, identity, deps.Errors.AnswerMismatch, nil)
		return "", deps.Errors.AnswerMismatch
	}

	token, err := deps.GenerateToken()
	if err != nil {
		mapped := fmt.Errorf("%w: %v", deps.Errors.ChallengeUnavailable, err)
		deps.EmitAudit(ctx, deps.Events.ChallengeVerify, false, identity, mapped, reason("token_generation_failed"))
		return "", mapped
	}
	deps.CachePut(deps.TokenKey(deps.TokenPrefix, identity), token)

	if limErr := deps.ResetLimiter(ctx, identity); limErr != nil {
		deps.LogWarn(ctx, "reset challenge limiter", "identity", identity, "error", limErr)
	}

	deps.MetricInc(deps.Metrics.AnswerAccepted)
	deps.MetricInc(deps.Metrics.TokenIssued)
	deps.EmitAudit(ctx, deps.Events.ChallengeVerify, true, identity, nil, nil)
	return token, nil
}

// RunConsumeResetToken redeems token for identity and forwards newCredential
// to the credential store. The cached token is matched and removed in one
// cache operation before the update, so at most one caller reaches the store
// per token. It is never restored, so a failed update still requires a new
// challenge.
func RunConsumeResetToken(ctx context.Context, identity, newCredential, token string, deps RecoveryDeps) error {
	normalizeRecoveryDeps(&deps)
	defer observeSince(deps, deps.Now())

	if deps.UpdateCredential == nil ||
		deps.TokenKey == nil ||
		deps.CacheCompareAndInvalidate == nil {
		return deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(identity) == "" {
		deps.MetricInc(deps.Metrics.TokenRedeemFailure)
		deps.EmitAudit(ctx, deps.Events.TokenRedeem, false, "", deps.Errors.InvalidArgument, reason("empty_identity"))
		return deps.Errors.InvalidArgument
	}
	if strings.TrimSpace(token) == "" {
		deps.MetricInc(deps.Metrics.TokenRedeemFailure)
		deps.EmitAudit(ctx, deps.Events.TokenRedeem, false, identity, deps.Errors.InvalidArgument, reason("empty_token"))
		return deps.Errors.InvalidArgument
	}

	key := deps.TokenKey(deps.TokenPrefix, identity)
	present, redeemed := deps.CacheCompareAndInvalidate(key, func(stored string) bool {
		return stored != "" && deps.TokensEqual(token, stored)
	})
	if !present {
		deps.MetricInc(deps.Metrics.TokenRedeemFailure)
		deps.MetricInc(deps.Metrics.TokenReplay)
		deps.EmitAudit(ctx, deps.Events.TokenRedeem, false, identity, deps.Errors.TokenMissingOrExpired, nil)
		return deps.Errors.TokenMissingOrExpired
	}
	if !redeemed {
		deps.MetricInc(deps.Metrics.TokenRedeemFailure)
		deps.EmitAudit(ctx, deps.Events.TokenRedeem, false, identity, deps.Errors.TokenMismatch, nil)
		return deps.Errors.TokenMismatch
	}

	updated, err := deps.UpdateCredential(ctx, identity, newCredential)
	if err != nil || !updated {
		mapped := deps.Errors.CredentialUpdateFailed
		if err != nil {
			mapped = fmt.Errorf("%w: %v", deps.Errors.CredentialUpdateFailed, err)
		}
		deps.MetricInc(deps.Metrics.TokenRedeemFailure)
		deps.MetricInc(deps.Metrics.CredentialUpdateFailed)
		deps.EmitAudit(ctx, deps.Events.TokenRedeem, false, identity, mapped, nil)
		return mapped
	}

	deps.MetricInc(deps.Metrics.TokenRedeemSuccess)
	deps.EmitAudit(ctx, deps.Events.TokenRedeem, true, identity, nil, nil)
	return nil
}

func normalizeRecoveryDeps(deps *RecoveryDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.ReserveLimiter == nil {
		deps.ReserveLimiter = func(context.Context, string, string) error { return nil }
	}
	if deps.ResetLimiter == nil {
		deps.ResetLimiter = func(context.Context, string) error { return nil }
	}
	if deps.MapLimiterError == nil {
		deps.MapLimiterError = func(error) error { return deps.Errors.ChallengeUnavailable }
	}
	if deps.TokensEqual == nil {
		deps.TokensEqual = func(a, b string) bool { return a == b }
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.ObserveLatency == nil {
		deps.ObserveLatency = func(int, time.Duration) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.EmitRateLimit == nil {
		deps.EmitRateLimit = func(context.Context, string, string, func() map[string]string) {}
	}
	if deps.LogWarn == nil {
		deps.LogWarn = func(context.Context, string, ...any) {}
	}
}

func observeSince(deps RecoveryDeps, start time.Time) {
	deps.ObserveLatency(deps.Metrics.RecoveryLatency, deps.Now().Sub(start))
}

func reason(r string) func() map[string]string {
	return func() map[string]string {
		return map[string]string{
			"reason": r,
		}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

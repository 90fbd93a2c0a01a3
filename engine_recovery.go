package goRecover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goRecover/internal"
	internalflows "github.com/MrEthical07/goRecover/internal/flows"
	"github.com/MrEthical07/goRecover/internal/limiters"
)

// SelectChallenge returns the recovery question registered for identity.
//
// It fails with [ErrIdentityNotFound] for unknown identities and
// [ErrNoChallengeConfigured] when the stored question is blank. It does not
// touch the token cache.
func (e *Engine) SelectChallenge(ctx context.Context, identity string) (string, error) {
	return internalflows.RunSelectChallenge(ctx, identity, e.recoveryFlowDeps())
}

// VerifyChallengeAnswer checks the answer to identity's recovery question. On
// a match it issues a new recovery token, replacing any token issued earlier
// for the same identity, and returns it. A mismatch returns
// [ErrAnswerMismatch] without revealing which field was wrong.
func (e *Engine) VerifyChallengeAnswer(ctx context.Context, identity, question, answer string) (string, error) {
	return internalflows.RunVerifyChallengeAnswer(ctx, identity, question, answer, e.recoveryFlowDeps())
}

// ConsumeResetToken redeems token and sets identity's credential to
// newCredential.
//
// The token is single-use: it is removed before the store update and is not
// restored if the update fails, in which case [ErrCredentialUpdateFailed] is
// returned and the caller must restart from SelectChallenge.
func (e *Engine) ConsumeResetToken(ctx context.Context, identity, newCredential, token string) error {
	return internalflows.RunConsumeResetToken(ctx, identity, newCredential, token, e.recoveryFlowDeps())
}

func (e *Engine) recoveryFlowDeps() internalflows.RecoveryDeps {
	deps := internalflows.RecoveryDeps{
		ClientIPFromContext: clientIPFromContext,
		TokenKey:            internal.TokenKey,
		TokensEqual:         internal.TokensEqual,
		GenerateToken:       internal.NewRecoveryToken,
		MapLimiterError:     mapChallengeLimiterError,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		ObserveLatency: func(id int, d time.Duration) {
			e.metricObserve(MetricID(id), d)
		},
		EmitAudit:     e.emitAudit,
		EmitRateLimit: e.emitRateLimit,
		LogWarn:       e.logWarn,
		Metrics: internalflows.RecoveryMetrics{
			ChallengeSelectSuccess: int(MetricChallengeSelectSuccess),
			ChallengeSelectFailure: int(MetricChallengeSelectFailure),
			AnswerAccepted:         int(MetricAnswerAccepted),
			AnswerRejected:         int(MetricAnswerRejected),
			TokenIssued:            int(MetricTokenIssued),
			TokenRedeemSuccess:     int(MetricTokenRedeemSuccess),
			TokenRedeemFailure:     int(MetricTokenRedeemFailure),
			TokenReplay:            int(MetricTokenReplay),
			CredentialUpdateFailed: int(MetricCredentialUpdateFailed),
			RecoveryLatency:        int(MetricRecoveryLatency),
		},
		Events: internalflows.RecoveryEvents{
			ChallengeSelect: AuditEventChallengeSelect,
			ChallengeVerify: AuditEventChallengeVerify,
			TokenRedeem:     AuditEventTokenRedeem,
		},
		Errors: internalflows.RecoveryErrors{
			EngineNotReady:         ErrEngineNotReady,
			InvalidArgument:        ErrInvalidArgument,
			IdentityNotFound:       ErrIdentityNotFound,
			NoChallengeConfigured:  ErrNoChallengeConfigured,
			AnswerMismatch:         ErrAnswerMismatch,
			TokenMissingOrExpired:  ErrTokenMissingOrExpired,
			TokenMismatch:          ErrTokenMismatch,
			CredentialUpdateFailed: ErrCredentialUpdateFailed,
			ChallengeRateLimited:   ErrChallengeRateLimited,
			ChallengeUnavailable:   ErrChallengeUnavailable,
			StoreUnavailable:       ErrStoreUnavailable,
		},
	}
	if e == nil {
		return deps
	}

	deps.TokenPrefix = e.config.Cache.KeyPrefix
	deps.Now = e.now

	if e.store != nil {
		deps.FindChallengeQuestion = e.store.FindChallengeQuestion
		deps.VerifyAnswer = e.store.VerifyAnswer
		deps.UpdateCredential = e.store.UpdateCredential
	}
	if e.tokens != nil {
		deps.CachePut = e.tokens.Put
		deps.CacheCompareAndInvalidate = e.tokens.CompareAndInvalidate
	}
	if e.limiter != nil {
		deps.ReserveLimiter = e.limiter.Reserve
		deps.ResetLimiter = e.limiter.Reset
	}

	return deps
}

func mapChallengeLimiterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, limiters.ErrChallengeRateLimited):
		return ErrChallengeRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrChallengeUnavailable, err)
	}
}

package goRecover

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// AuditErrorCode is the stable, non-sensitive error label written to
// [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrInvalidArgument        AuditErrorCode = "invalid_argument"
	auditErrIdentityNotFound       AuditErrorCode = "identity_not_found"
	auditErrNoChallenge            AuditErrorCode = "no_challenge_configured"
	auditErrAnswerMismatch         AuditErrorCode = "answer_mismatch"
	auditErrTokenMissing           AuditErrorCode = "token_missing_or_expired"
	auditErrTokenMismatch          AuditErrorCode = "token_mismatch"
	auditErrCredentialUpdateFailed AuditErrorCode = "credential_update_failed"
	auditErrInvalidCredentials     AuditErrorCode = "invalid_credentials"
	auditErrRateLimited            AuditErrorCode = "rate_limited"
	auditErrUnavailable            AuditErrorCode = "backend_unavailable"
	auditErrInternal               AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Identity:  identity,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	identity string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, AuditEventRateLimitTriggered, false, identity, nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return auditErrInvalidArgument
	case errors.Is(err, ErrIdentityNotFound):
		return auditErrIdentityNotFound
	case errors.Is(err, ErrNoChallengeConfigured):
		return auditErrNoChallenge
	case errors.Is(err, ErrAnswerMismatch):
		return auditErrAnswerMismatch
	case errors.Is(err, ErrTokenMissingOrExpired):
		return auditErrTokenMissing
	case errors.Is(err, ErrTokenMismatch):
		return auditErrTokenMismatch
	case errors.Is(err, ErrCredentialUpdateFailed):
		return auditErrCredentialUpdateFailed
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrChallengeRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrChallengeUnavailable),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrFeatureUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

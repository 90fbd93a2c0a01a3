package goRecover

import (
	"context"

	"github.com/MrEthical07/goRecover/internal"
	internalflows "github.com/MrEthical07/goRecover/internal/flows"
)

// ChangeCredential replaces identity's credential after checking oldSecret.
// Any outstanding recovery token for identity is invalidated on success.
//
// The store must implement [CredentialVerifier]; otherwise
// [ErrFeatureUnavailable] is returned.
func (e *Engine) ChangeCredential(ctx context.Context, identity, oldSecret, newSecret string) error {
	return internalflows.RunChangeCredential(ctx, identity, oldSecret, newSecret, e.credentialFlowDeps())
}

// CheckIdentifierAvailable returns nil when value is not yet used as an
// identifier of the given kind, [ErrIdentifierTaken] when it is, and
// [ErrInvalidArgument] for a blank value or unknown kind.
func (e *Engine) CheckIdentifierAvailable(ctx context.Context, kind, value string) error {
	return internalflows.RunCheckIdentifierAvailable(ctx, kind, value, e.credentialFlowDeps())
}

func (e *Engine) credentialFlowDeps() internalflows.CredentialDeps {
	deps := internalflows.CredentialDeps{
		TokenKey: internal.TokenKey,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.CredentialMetrics{
			CredentialChangeSuccess: int(MetricCredentialChangeSuccess),
			CredentialChangeFailure: int(MetricCredentialChangeFailure),
			IdentifierChecked:       int(MetricIdentifierChecked),
		},
		Events: internalflows.CredentialEvents{
			CredentialChange: AuditEventCredentialChange,
		},
		Errors: internalflows.CredentialErrors{
			EngineNotReady:         ErrEngineNotReady,
			InvalidArgument:        ErrInvalidArgument,
			InvalidCredentials:     ErrInvalidCredentials,
			CredentialUpdateFailed: ErrCredentialUpdateFailed,
			FeatureUnavailable:     ErrFeatureUnavailable,
			IdentifierTaken:        ErrIdentifierTaken,
			StoreUnavailable:       ErrStoreUnavailable,
		},
	}
	if e == nil {
		return deps
	}

	deps.TokenPrefix = e.config.Cache.KeyPrefix
	if e.store != nil {
		deps.UpdateCredential = e.store.UpdateCredential
	}
	if e.verifier != nil {
		deps.VerifyCredential = e.verifier.VerifyCredential
	}
	if e.identifiers != nil {
		deps.IdentifierExists = e.identifiers.IdentifierExists
	}
	if e.tokens != nil {
		deps.CacheInvalidate = e.tokens.Invalidate
	}

	return deps
}

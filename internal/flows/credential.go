package flows

import (
	"context"
	"fmt"
	"strings"
)

type CredentialMetrics struct {
	CredentialChangeSuccess int
	CredentialChangeFailure int
	IdentifierChecked       int
}

type CredentialEvents struct {
	CredentialChange string
}

type CredentialErrors struct {
	EngineNotReady         error
	InvalidArgument        error
	InvalidCredentials     error
	CredentialUpdateFailed error
	FeatureUnavailable     error
	IdentifierTaken        error
	StoreUnavailable       error
}

type CredentialDeps struct {
	TokenPrefix string

	VerifyCredential func(context.Context, string, string) (bool, error)
	UpdateCredential func(context.Context, string, string) (bool, error)
	IdentifierExists func(context.Context, string, string) (bool, error)

	TokenKey        func(string, string) string
	CacheInvalidate func(string)

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, error, func() map[string]string)

	Metrics CredentialMetrics
	Events  CredentialEvents
	Errors  CredentialErrors
}

// IdentifierKinds lists the identifier kinds RunCheckIdentifierAvailable
// accepts.
var IdentifierKinds = []string{"username", "email"}

// RunChangeCredential replaces the credential of an identity that proves
// knowledge of the current one. Any outstanding recovery token for the
// identity is dropped on success.
func RunChangeCredential(ctx context.Context, identity, oldSecret, newSecret string, deps CredentialDeps) error {
	normalizeCredentialDeps(&deps)

	if deps.UpdateCredential == nil {
		return deps.Errors.EngineNotReady
	}
	if deps.VerifyCredential == nil {
		return deps.Errors.FeatureUnavailable
	}
	if strings.TrimSpace(identity) == "" || oldSecret == "" || newSecret == "" {
		deps.MetricInc(deps.Metrics.CredentialChangeFailure)
		deps.EmitAudit(ctx, deps.Events.CredentialChange, false, identity, deps.Errors.InvalidArgument, reason("invalid_input"))
		return deps.Errors.InvalidArgument
	}

	ok, err := deps.VerifyCredential(ctx, identity, oldSecret)
	if err != nil {
		if isContextError(err) {
			return err
		}
		mapped := fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
		deps.MetricInc(deps.Metrics.CredentialChangeFailure)
		deps.EmitAudit(ctx, deps.Events.CredentialChange, false, identity, mapped, nil)
		return mapped
	}
	if !ok {
		deps.MetricInc(deps.Metrics.CredentialChangeFailure)
		deps.EmitAudit(ctx, deps.Events.CredentialChange, false, identity, deps.Errors.InvalidCredentials, nil)
		return deps.Errors.InvalidCredentials
	}

	updated, err := deps.UpdateCredential(ctx, identity, newSecret)
	if err != nil || !updated {
		mapped := deps.Errors.CredentialUpdateFailed
		if err != nil {
			mapped = fmt.Errorf("%w: %v", deps.Errors.CredentialUpdateFailed, err)
		}
		deps.MetricInc(deps.Metrics.CredentialChangeFailure)
		deps.EmitAudit(ctx, deps.Events.CredentialChange, false, identity, mapped, nil)
		return mapped
	}

	if deps.TokenKey != nil && deps.CacheInvalidate != nil {
		deps.CacheInvalidate(deps.TokenKey(deps.TokenPrefix, identity))
	}

	deps.MetricInc(deps.Metrics.CredentialChangeSuccess)
	deps.EmitAudit(ctx, deps.Events.CredentialChange, true, identity, nil, nil)
	return nil
}

// RunCheckIdentifierAvailable returns nil when value is free to register
// under kind, and IdentifierTaken when it already belongs to an identity.
func RunCheckIdentifierAvailable(ctx context.Context, kind, value string, deps CredentialDeps) error {
	normalizeCredentialDeps(&deps)

	if deps.IdentifierExists == nil {
		return deps.Errors.FeatureUnavailable
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if strings.TrimSpace(value) == "" || !knownIdentifierKind(kind) {
		return deps.Errors.InvalidArgument
	}

	deps.MetricInc(deps.Metrics.IdentifierChecked)

	exists, err := deps.IdentifierExists(ctx, kind, value)
	if err != nil {
		if isContextError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}
	if exists {
		return deps.Errors.IdentifierTaken
	}
	return nil
}

func knownIdentifierKind(kind string) bool {
	for _, k := range IdentifierKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func normalizeCredentialDeps(deps *CredentialDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
}

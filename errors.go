package goRecover

import "errors"

var (
	// ErrInvalidArgument reports a blank or malformed request field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIdentityNotFound reports that the credential store has no such identity.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrNoChallengeConfigured reports an identity whose recovery question is blank.
	ErrNoChallengeConfigured = errors.New("no recovery question configured")
	// ErrAnswerMismatch reports that identity, question and answer do not match.
	// It does not say which field was wrong.
	ErrAnswerMismatch = errors.New("recovery answer mismatch")
	// ErrTokenMissingOrExpired covers tokens that were never issued, already
	// redeemed, evicted, or idle-expired.
	ErrTokenMissingOrExpired = errors.New("recovery token missing or expired")
	// ErrTokenMismatch reports a presented token that differs from the live one.
	ErrTokenMismatch = errors.New("recovery token mismatch")
	// ErrCredentialUpdateFailed reports that the store did not apply the new
	// credential. The redeemed token stays consumed.
	ErrCredentialUpdateFailed = errors.New("credential update failed")
	// ErrChallengeRateLimited reports too many answer attempts for an identity or IP.
	ErrChallengeRateLimited = errors.New("recovery challenge rate limited")
	// ErrChallengeUnavailable reports that the limiter backend or token source failed.
	ErrChallengeUnavailable = errors.New("recovery challenge backend unavailable")
	// ErrStoreUnavailable wraps credential store transport failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrInvalidCredentials reports a wrong current credential on change.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdentifierTaken reports an identifier that already belongs to an identity.
	ErrIdentifierTaken = errors.New("identifier already taken")
	// ErrFeatureUnavailable reports that the configured store does not implement
	// the optional interface an operation needs.
	ErrFeatureUnavailable = errors.New("feature not supported by credential store")
	// ErrEngineNotReady is returned by methods on a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

package goRecover

import "context"

// CredentialStore is the identity backend the recovery engine consults.
//
// Implementations must be safe for concurrent use. A false result with a nil
// error is a business outcome (no match, nothing updated). A non-nil error is
// a transport failure.
type CredentialStore interface {
	// FindChallengeQuestion returns the registered recovery question.
	// found is false when the identity does not exist.
	FindChallengeQuestion(ctx context.Context, identity string) (question string, found bool, err error)
	// VerifyAnswer reports whether identity, question and answer all match.
	VerifyAnswer(ctx context.Context, identity, question, answer string) (bool, error)
	// UpdateCredential replaces the identity's credential with newSecret.
	UpdateCredential(ctx context.Context, identity, newSecret string) (bool, error)
}

// CredentialVerifier is implemented by stores that can check a current
// credential. It enables [Engine.ChangeCredential].
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, identity, secret string) (bool, error)
}

// IdentifierChecker is implemented by stores that can look up identifiers by
// kind ("username" or "email"). It enables [Engine.CheckIdentifierAvailable].
type IdentifierChecker interface {
	IdentifierExists(ctx context.Context, kind, value string) (bool, error)
}

// Identifier kinds accepted by [Engine.CheckIdentifierAvailable].
const (
	IdentifierUsername = "username"
	IdentifierEmail    = "email"
)

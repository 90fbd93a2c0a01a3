// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunSelectChallenge, RunVerifyChallengeAnswer,
// RunConsumeResetToken, RunChangeCredential, RunCheckIdentifierAvailable)
// accepts a typed dependency struct and returns results without side-effects
// beyond those dependencies.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the credential store, token cache,
// attempt limiter, audit dispatcher, and metrics. They do NOT own any of these
// resources. Ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goRecover (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency funcs.
package flows

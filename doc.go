// Package goRecover provides a credential-recovery engine: a three-step
// challenge protocol backed by a bounded, idle-expiring in-memory token cache.
//
// The protocol is:
//
//  1. [Engine.SelectChallenge] returns the identity's recovery question.
//  2. [Engine.VerifyChallengeAnswer] checks the answer and issues a recovery
//     token (256 random bits) stored under "<prefix>_<identity>".
//  3. [Engine.ConsumeResetToken] redeems the token exactly once and forwards
//     the new credential to the [CredentialStore].
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goRecover is the public surface. It exposes [Engine], [Builder], [Config],
// [CredentialStore] and value types. Flow orchestration, the token cache and
// the Redis attempt limiter live under internal/ and are never exported.
//
// # Token lifetime
//
// Tokens live only in process memory. A restart drops every in-flight
// recovery. A token disappears when it is redeemed, when a newer token is
// issued for the same identity, when it is idle for Cache.IdleTimeout, or when
// it is evicted as least recently used.
//
// # What this package must NOT do
//
//   - Record tokens, answers or credentials in audit events or logs.
//   - Hash credentials. Stores own their hashing (see package password).
//   - Import any sub-package that re-imports goRecover (no import cycles).
package goRecover

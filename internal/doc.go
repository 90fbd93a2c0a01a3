// Package internal contains helpers that are private to goRecover, chiefly
// recovery token generation, namespacing and comparison.
//
// # Sub-packages
//
//   - cache: bounded LRU token cache with sliding idle expiry
//   - flows: pure-function flow orchestrators for every Engine operation
//   - limiters: answer-verification attempt limiter
//   - rate: core Redis-backed fixed-window counters
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRecover API.
//   - Be imported by any package outside the goRecover module.
package internal

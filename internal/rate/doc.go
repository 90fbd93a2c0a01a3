// Package rate provides the Redis fixed-window counter used to build
// attempt limiters.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Callers own
// their key prefixes.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in internal/limiters).
//   - Be imported outside the goRecover module.
package rate

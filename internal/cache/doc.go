// Package cache provides the bounded, idle-expiring store that holds recovery
// tokens between the verify and redeem steps.
//
// # Eviction
//
// Entries live in a map paired with an access-ordered doubly linked list. Put
// evicts the tail (least recently accessed) before inserting a new key when
// the cache is full, so the resident count never exceeds Capacity.
//
// # Expiry
//
// Expiry is sliding: every Put and every successful Get restamps the entry.
// Idle entries are dropped lazily on the Get that observes them.
//
// # What this package must NOT do
//
//   - Know about identities, tokens, or key prefixes.
//   - Surface internal faults to callers. Get degrades to a miss.
package cache

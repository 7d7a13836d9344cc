// Package state provides the mutable containers owned by interceptor chains.
//
// Each container is owned by exactly one chain and carries its own lock:
//   - Slot: holds at most one value, set once and never replaced
//   - Counter: monotonically increasing attempt counter
//   - MemoCache: unbounded result cache keyed by canonical argument keys
//   - Cell: raw field storage at the end of an accessor delegation chain
//
// Nothing here is package-level state. Containers live as long as the chain that
// created them, which in practice is the lifetime of the process.
package state

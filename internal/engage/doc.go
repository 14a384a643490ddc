// Package engage implements optimistic engagement counter mutations.
//
// The package is built around three pieces:
//
//   - [Store] : the in-memory engagement state read by the display layer
//   - [Engine] : the shared optimistic apply/reconcile/rollback primitive
//   - [LikeController] : the like/unlike protocol over the engine
//
// # Mutation protocol
//
// A mutation applies its deltas to the store synchronously, so the display
// layer sees the change before the network call resolves. When the side
// effect settles, the engine reconciles local state to the server's
// authoritative values on success, keeps the optimistic state on a
// duplicate-action conflict, and reverts exactly its own deltas on any
// other failure. Rollbacks are relative: a concurrent mutation's deltas
// are never clobbered by an absolute restore.
//
// An unauthorized response additionally invalidates the session identity
// through the gate, demoting the session to guest for subsequent reads.
package engage

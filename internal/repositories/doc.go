// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SessionRepository] : The persisted client key-value store read by the identity gate
//   - [ItemRepository] : Engageable item catalog with cached like counters
//   - [TrackRepository] : Playable track catalog with cached play counters
//   - [CounterCacheAdapter] : Write-through target for bulk counter refreshes
//
// Sequence numbers provide stable, human-readable ordering (e.g., item #42, track #15) independent of IDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

// Package models defines domain entities and persistence interfaces for the engagement core.
//
// Persistent entities are database-backed models with full lifecycle management:
//   - [Item] : An engageable content item (gallery entry) with its like counter
//   - [Track] : A playable track with play counters and external platform links
//
// Both implement the Model interface providing ID generation, timestamps, validation,
// and soft delete support. The Repository[T] interface defines standard CRUD
// operations for database access.
//
// Counter fields on these entities are the local read cache of the remote
// counter service; the in-memory engagement state derived from them is what
// optimistic mutations act on.
package models

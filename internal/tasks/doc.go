// Package tasks orchestrates long-running catalog operations with real-time progress reporting.
//
// # Core Operations
//
// The [RefreshEngine] exposes three operations:
//
//  1. [RefreshEngine.Load] : Cheap catalog load
//     - One listing call per collection (items, tracks)
//     - Results land in the in-memory engagement store
//
//  2. [RefreshEngine.Refresh] : Full counter refresh
//     - Re-fetches every known entity through a rate-limited worker pool
//     - Writes authoritative counters to the store and the persistent cache
//     - Reports per-entity failures without aborting the run
//
//  3. [RefreshEngine.Export] : Library snapshot export
//     - Renders the current engagement snapshot as JSON, CSV, Markdown, or text
//     - Optionally refreshes counters first
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking.
//
// # Counter Caching
//
// The optional [CounterCache] interface persists refreshed counters
// (repositories.CounterCacheAdapter). Cache write failures are reported per
// entity so a read-only database never aborts a refresh.
package tasks

// Package server provides HTTP routing, middleware, and the development
// counter service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
//
// # Counter Service
//
// [CounterHandler] implements a local stand-in for the remote counter
// service so the client can be exercised end to end without network access:
//
//   - GET /items, GET /items/{id}: catalog reads with per-user like state
//   - POST /items/{id}/like: like intent; attributed likes are deduplicated
//     through a ledger table and duplicates answer 409
//   - GET /tracks, GET /tracks/{id}: catalog reads with per-user play counts
//   - PUT /tracks/{id}/play: attributed play, deduplicated by the client's
//     playback session id; replays answer 409 and the bearer token must
//     resolve to the named user or the request is 401
//
// State persists in the same sqlite database the client uses for its local
// cache, under separate ledger tables.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server

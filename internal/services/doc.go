// Package services defines the [CounterAPI] interface for the remote counter service and implements it over HTTP.
//
// # CounterAPI Interface
//
// The interface covers the catalog read endpoints and the two mutation
// endpoints the engagement core drives:
//
//	POST /items/{id}/like   posts the viewer's intended like state
//	PUT  /tracks/{id}/play  records one play, bearer credential required
//
// # Status Mapping
//
// [CounterService] maps the service's idempotence and identity statuses
// onto typed errors from the shared package:
//   - 409 Conflict → [shared.ErrDuplicate] : the action was already applied
//     server-side; callers treat it as idempotent success and keep their
//     optimistic local state.
//   - 401 Unauthorized → [shared.ErrUnauthorized] : a hard trigger for
//     identity invalidation in the session gate.
//   - transport failures → [shared.ErrAPIRequest] : callers roll back the
//     optimistic delta and otherwise carry on.
//
// # Raw Client
//
// [APIService] is a raw request client over the same base URL used by the
// api debugging commands; it performs no status mapping and returns the
// response as captured.
package services

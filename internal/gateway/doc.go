// Package gateway exposes the variable store to other processes over a
// local IPC channel.
//
// # Overview
//
// The gateway daemon listens on a unix domain socket (and optionally a
// TCP address) and serves a small JSON request/response API. A foreign
// runtime creates a session, operates on it through an opaque handle,
// and destroys it when done. JSON framing means caller-supplied names,
// values, and paths need no escaping and cannot alter request meaning.
//
// # Session API
//
//   - POST   /v1/sessions              create a session (never fails)
//   - DELETE /v1/sessions/{id}         destroy; idempotent
//   - GET    /v1/sessions/{id}/vars?name=N  one rendered value
//   - GET    /v1/sessions/{id}/vars    full store as a JSON object
//   - PUT    /v1/sessions/{id}/vars    coerce and set a variable
//   - POST   /v1/sessions/{id}/process run a line through the input processor
//   - GET    /healthz                  liveness (no auth)
//
// Each session owns an independent store instance; two sessions bound
// to the same file are snapshots of each other and converge only
// through save/load cycles (last save wins).
//
// # Client Contract
//
// Client implements the five-operation surface with soft failure:
// Create returns an invalid handle instead of an error, Get returns "",
// Set returns false, List returns "{}", Destroy is best-effort. Calls
// are bounded by a timeout; a timed-out call is a failure, not a
// pending operation. Every returned string is freshly allocated.
//
// # Auth and Audit
//
// When auth.jwt_secret is configured all session routes require an
// HS256 bearer token (see the auth package). When the audit log is
// attached, session lifecycle and variable writes are recorded (names
// only, never values).
package gateway

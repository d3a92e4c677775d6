// Package audit keeps an append-only log of gateway mutations.
//
// The log is a single SQLite database (WAL mode) recording session
// creation and destruction plus every variable write that arrives over
// the gateway, with the authenticated subject when auth is enabled.
// Variable values are deliberately not recorded, only names.
//
// The log is optional; the gateway runs without one when audit.enabled
// is false.
package audit

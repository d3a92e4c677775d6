// Package vars implements the persistent variable store and its value model.
//
// # Value Model
//
// Value is a tagged union over the JSON literal types:
//
//   - null, bool, number, string, array, object
//
// Numbers carry their literal text (json.Number), so a stored 1.50 is
// re-serialized as 1.50 and not 1.5. Coerce converts assignment literals
// into typed values with a plain-string fallback for anything that is not
// valid JSON; Render produces the text substituted during interpolation.
//
// # Store
//
// Store maps variable names to values and is backed by exactly one JSON
// file (variables.json under the config directory by default):
//
//	store := vars.Open(path)   // tolerant: never fails
//	store.Set("name", vars.Coerce("Alice"))
//	v, ok := store.Get("name")
//
// Open recovers from a missing or corrupt file by starting empty. Set
// persists immediately with a write-temp/fsync/rename sequence; a save
// failure leaves the in-memory write intact and is reported as a
// non-fatal error. Get, Snapshot, and JSON never write.
//
// All Store methods are safe for concurrent use within one process.
// Stores in separate processes sharing one path are independent
// snapshots; concurrent saves are last-write-wins.
package vars

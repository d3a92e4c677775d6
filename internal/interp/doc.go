// Package interp turns raw input lines into store operations.
//
// Every line funneled through Processor.Process has exactly one of two
// outcomes:
//
//   - Assignment: the line's first '=' (not at position 0, no whitespace
//     before it) splits a variable name from a literal. The literal is
//     coerced (see vars.Coerce), written through to the store, and a
//     confirmation string is returned.
//   - Interpolation: every variable name appearing as a standalone word
//     in the line is replaced with its rendered value, in one pass.
//
// The processor keeps no state between calls beyond the store itself.
package interp

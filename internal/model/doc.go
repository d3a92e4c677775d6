// Package model is the narrow collaborator boundary to a remote model
// API. It receives text that has already been through variable
// interpolation and returns the model's reply; it has no access to the
// store.
package model

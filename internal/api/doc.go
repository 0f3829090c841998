// Package api exposes catalog, classification, migration, and taxonomy
// operations through transport-friendly DTOs, keeping internal types out of
// command output.
package api

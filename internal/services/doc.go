// Package services holds the error taxonomy and context plumbing shared by
// every pipeline component. Errors are tagged with sentinel markers so callers
// can decide between aborting, degrading to a fallback result, and rejecting
// an individual operation.
package services

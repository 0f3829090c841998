// Package classify turns pending catalog items into category proposals.
// Heuristics decide the obvious cases; an inference backend handles the
// rest; the fallback category catches everything that fails. A worker-pool
// orchestrator runs batches with rate limiting and progress reporting.
package classify

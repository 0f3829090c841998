// Package migrate copies approved catalog items into the organized library.
// Destinations derive from the proposal's category path, subpath, and
// filename; conflicts resolve by hash comparison or deterministic numeric
// suffixes. Copies verify size and hash before the catalog records the move.
package migrate

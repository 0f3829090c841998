// Package catalog persists discovered files and their classification and
// review state in SQLite, and enforces the review status state machine.
package catalog

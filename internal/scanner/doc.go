// Package scanner discovers files under a source directory, hashes their
// contents, and registers them as pending catalog items.
package scanner

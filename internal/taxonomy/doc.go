// Package taxonomy loads and validates the category tree that classification
// results are resolved against, and renders filenames from per-node naming
// templates.
package taxonomy

// Package logging wires log/slog with the handlers and attribute helpers the
// rest of the codebase uses.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Standardized field names keep item,
// batch, and stage identifiers consistent across components; WithContext
// derives them from a context.Context populated by the services package.
package logging

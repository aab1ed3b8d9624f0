// Package config resolves the final request configuration for one
// invocation.
//
// Three sources feed the same logical fields: CLI flags, an optional TOML
// preset, and the captured environment snapshot. They merge with a fixed
// per-field precedence (CLI flag > preset field > environment variable >
// built-in default) into one immutable Request, validated before any
// network activity:
//   - a URL must resolve from some source
//   - at most one body source may be populated
//   - the method must be one of GET, POST, PUT, DELETE, HEAD, PATCH
//   - timeout and retry settings must be in range
package config

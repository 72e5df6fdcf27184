// Package manifest models package.json documents without losing key order.
//
// # Tables
//
// A [Table] is a dependency table (name → version) that remembers insertion
// order and round-trips through JSON in that order. [OrderByKeys] returns a
// copy sorted by name; it is applied once, to the generated dependencies,
// right before rendering.
//
// # Manifests
//
// A [Manifest] is a package.json object. Fields this package does not touch
// are kept verbatim and in their original position; the three dependency
// tables are exposed as [*Table] values so callers can edit them in place.
//
// [Render] writes the base manifest with its dependencies replaced by a
// generated table, as 4-space indented JSON.
package manifest

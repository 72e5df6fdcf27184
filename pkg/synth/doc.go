// Package synth computes the runtime dependencies of a bundled artifact.
//
// # Overview
//
// [Engine.Compute] folds three sources into one name → version table:
//
//  1. additional dependencies supplied by the caller,
//  2. the installed versions of the external modules the bundler reported,
//  3. the dependency tables of the base manifest.
//
// Later steps overwrite earlier ones. External module references are parsed
// with [modref.ParseIdentifier]; relative requests, excluded names and
// runtime built-ins are skipped before any filesystem lookup.
//
// # Base Manifest Reconciliation
//
// Each entry of the base manifest's dependencies, devDependencies and
// peerDependencies tables (in that order) is handled by a fixed rule keyed on
// the table and on whether the entry pins a version:
//
//	table            pinned   action
//	dependencies     yes      use the pinned version
//	dependencies     no       use the installed version
//	dev/peer         yes      leave it on the base manifest only
//	dev/peer         no       write the installed version back into the base
//	                          table and drop the name from the output
//
// # Failures
//
// A module that is not installed is skipped and reported in
// [Result.Skipped]. A broken installation (unparseable package.json, missing
// version) aborts the computation; see [installed.Kind.Fatal].
package synth

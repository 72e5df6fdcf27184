// Package installed reads the versions of npm packages installed on disk.
//
// # Overview
//
// [Resolver.Resolve] finds a package the way Node.js would when the package is
// required from a given directory, walks from the resolved entry file back to
// the package root, and reads the version from the package.json found there:
//
//	r := installed.NewResolver("/app", logger)
//	rec, err := r.Resolve("lodash", "/app/src")
//	if installed.IsFatal(err) {
//	    return err // broken installation
//	}
//
// # Failures
//
// Every failure is a [*Failure] carrying a [Kind]. An absent package
// ([NotInstalled]) or a resolution that does not lead back into node_modules
// ([PathInconsistent]) concerns that one package only. A package.json that
// cannot be parsed ([Corrupt]) or lacks a version ([MissingVersion]) means
// the local installation is broken; [Kind.Fatal] reports true for those.
//
// # Entry Points
//
// Packages whose "exports" map has no main entry cannot be required by name.
// Node reports them with a `No "exports" main defined in <package.json>`
// error; the resolver recovers the package.json path from that error and
// carries on from there.
package installed

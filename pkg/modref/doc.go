// Package modref turns bundler module references into npm package names.
//
// # Overview
//
// A bundler assigns every module an opaque identifier. For modules left out
// of the bundle (externals) that identifier still carries the import request,
// either quoted:
//
//	external "lodash/get"
//	external "@aws-sdk/client-s3/dist-cjs"
//
// or, for ECMAScript modules, as a path below node_modules behind a
// resolution-kind marker:
//
//	javascript/esm|/app/node_modules/@foo/bar/dist/x.js
//
// [ParseIdentifier] reduces both shapes to the installable package name
// ("lodash", "@aws-sdk/client-s3", "@foo/bar"). It never fails: an empty
// result means no package name could be derived.
//
// # Built-in Modules
//
// [NodeBuiltins] lists the modules shipped with Node.js itself. They are never
// installed packages and must not appear in a generated manifest.
package modref

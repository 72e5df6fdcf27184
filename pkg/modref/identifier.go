package modref

import (
	"path/filepath"
	"strings"
)

const (
	// esmMarker flags identifiers in the path-segment form.
	esmMarker = "javascript/esm"

	// externalMarker prefixes identifiers of modules left out of the bundle.
	externalMarker = "external "

	packagesDir = "node_modules"
	scopePrefix = "@"
	quote       = `"`
)

// sep is the separator used in filesystem paths embedded in identifiers.
var sep = string(filepath.Separator)

// Reference is a module reference as reported by a bundler, paired with the
// directory of the module that imported it.
type Reference struct {
	Identifier string `json:"identifier"`
	Context    string `json:"context,omitempty"`
}

// IsExternal reports whether identifier names a module the bundler left out
// of the bundle.
func IsExternal(identifier string) bool {
	return strings.Contains(identifier, externalMarker)
}

// IsRelative reports whether name is a self-relative request ("." or "..")
// rather than a package.
func IsRelative(name string) bool {
	return name == "." || name == ".."
}

// ParseIdentifier returns the package name an identifier refers to, or ""
// when none can be derived.
func ParseIdentifier(identifier string) string {
	if strings.Contains(identifier, esmMarker) {
		return parsePath(identifier)
	}
	return parseQuoted(identifier)
}

// parsePath handles the marker form: the package is the first one or two
// segments below the last node_modules directory.
func parsePath(identifier string) string {
	rest := identifier[strings.LastIndex(identifier, esmMarker)+len(esmMarker):]

	i := strings.LastIndex(rest, packagesDir)
	if i < 0 {
		return ""
	}
	rest = rest[i+len(packagesDir):]
	rest = strings.TrimPrefix(rest, sep)

	return trimSubpath(rest, sep, strings.HasPrefix(rest, scopePrefix))
}

// parseQuoted handles the legacy form: the request between the outer quotes,
// with any leading node_modules path and any subpath trimmed away.
func parseQuoted(identifier string) string {
	first := strings.Index(identifier, quote)
	last := strings.LastIndex(identifier, quote)
	if first < 0 || last <= first {
		return ""
	}
	request := identifier[first+1 : last]
	if i := strings.LastIndex(request, packagesDir+"/"); i >= 0 {
		request = request[i+len(packagesDir)+1:]
	}

	// Any scope marker counts here, not only a leading one.
	return trimSubpath(request, "/", strings.Contains(request, scopePrefix))
}

// trimSubpath drops trailing path segments from request until only the
// package name is left: one segment, or two for scoped requests.
func trimSubpath(request, separator string, scoped bool) string {
	slashes := strings.Count(request, separator)

	for (!scoped && slashes > 0) || slashes > 1 {
		request = request[:strings.LastIndex(request, separator)]
		slashes--
	}
	return request
}

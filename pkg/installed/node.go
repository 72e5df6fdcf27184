package installed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	packagesDir  = "node_modules"
	manifestName = "package.json"

	// noExportsMainPrefix starts the error Node raises for packages whose
	// "exports" map has no main entry.
	noExportsMainPrefix = `No "exports" main defined in `
)

// ModuleResolver locates the entry file a package name resolves to when
// required from a directory.
type ModuleResolver interface {
	ResolveMain(name, from string) (string, error)
}

// NoExportsMainError reports a package whose "exports" map defines subpaths
// but no main entry.
type NoExportsMainError struct {
	ManifestPath string
}

func (e *NoExportsMainError) Error() string {
	return noExportsMainPrefix + e.ManifestPath
}

// NotFoundError reports a package that is not installed anywhere on the
// search path.
type NotFoundError struct {
	Name string
	From string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find module %q from %s", e.Name, e.From)
}

// errNoEntry marks a package directory without a loadable entry file. The
// search moves on to the next node_modules directory.
var errNoEntry = errors.New("no entry file")

// NodeResolver implements the Node.js package lookup: node_modules
// directories from the starting directory up to the filesystem root, then
// any extra Paths (the NODE_PATH folders).
type NodeResolver struct {
	Paths []string
}

// ResolveMain returns the real path of the entry file name resolves to from
// the directory from.
func (r NodeResolver) ResolveMain(name, from string) (string, error) {
	start, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}

	for _, dir := range r.searchDirs(start) {
		main, err := entryPoint(filepath.Join(dir, filepath.FromSlash(name)))
		if errors.Is(err, errNoEntry) {
			continue
		}
		if err != nil {
			return "", err
		}
		return realPath(main), nil
	}
	return "", &NotFoundError{Name: name, From: start}
}

// searchDirs lists node_modules directories in lookup order.
func (r NodeResolver) searchDirs(start string) []string {
	var dirs []string
	for dir := start; ; {
		if filepath.Base(dir) != packagesDir {
			dirs = append(dirs, filepath.Join(dir, packagesDir))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for _, p := range r.Paths {
		if p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

type entryFields struct {
	Main    string          `json:"main"`
	Exports json.RawMessage `json:"exports"`
}

// entryPoint returns the entry file of the package installed at dir.
func entryPoint(dir string) (string, error) {
	if !isDir(dir) {
		return "", errNoEntry
	}

	manifestPath := filepath.Join(dir, manifestName)
	data, err := os.ReadFile(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		return firstFile(dir, "index")
	}
	var pkg entryFields
	if err == nil {
		err = json.Unmarshal(data, &pkg)
	}
	if err != nil {
		// The package exists; reading its version reports the broken manifest.
		return manifestPath, nil
	}

	if len(pkg.Exports) > 0 && string(pkg.Exports) != "null" {
		target, ok := exportsMain(pkg.Exports)
		if !ok {
			return "", &NoExportsMainError{ManifestPath: manifestPath}
		}
		return filepath.Join(dir, filepath.FromSlash(target)), nil
	}

	if pkg.Main != "" {
		main := filepath.Join(dir, filepath.FromSlash(pkg.Main))
		if f, err := firstFile(filepath.Dir(main), filepath.Base(main)); err == nil {
			return f, nil
		}
		if f, err := firstFile(main, "index"); err == nil {
			return f, nil
		}
	}
	return firstFile(dir, "index")
}

// entryExtensions are tried in order after the bare file name.
var entryExtensions = []string{"", ".js", ".json", ".node"}

func firstFile(dir, base string) (string, error) {
	for _, ext := range entryExtensions {
		if ext == "" && base == "index" {
			continue
		}
		p := filepath.Join(dir, base+ext)
		if isFile(p) {
			return p, nil
		}
	}
	return "", errNoEntry
}

// exportConditions are the conditions honored for require(), by priority.
var exportConditions = []string{"require", "node", "default"}

// exportsMain returns the target of the "." entry of an exports field.
func exportsMain(raw json.RawMessage) (string, bool) {
	var exports any
	if err := json.Unmarshal(raw, &exports); err != nil {
		return "", false
	}

	if m, ok := exports.(map[string]any); ok {
		subpaths := false
		for k := range m {
			if strings.HasPrefix(k, ".") {
				subpaths = true
				break
			}
		}
		if subpaths {
			main, ok := m["."]
			if !ok {
				return "", false
			}
			return exportTarget(main)
		}
	}
	return exportTarget(exports)
}

func exportTarget(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case []any:
		for _, alt := range t {
			if s, ok := exportTarget(alt); ok {
				return s, true
			}
		}
	case map[string]any:
		for _, cond := range exportConditions {
			if next, ok := t[cond]; ok {
				if s, ok := exportTarget(next); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}

// manifestPathFromError recovers the package.json path from a failure to
// resolve a package without an exports main entry. Errors from other module
// resolvers are matched on Node's message text.
func manifestPathFromError(err error) (string, bool) {
	var noMain *NoExportsMainError
	if errors.As(err, &noMain) {
		return noMain.ManifestPath, true
	}

	msg := err.Error()
	start := strings.LastIndex(msg, noExportsMainPrefix)
	end := strings.LastIndex(msg, manifestName)
	if start < 0 || end < 0 || end < start+len(noExportsMainPrefix) {
		return "", false
	}
	return msg[start+len(noExportsMainPrefix) : end+len(manifestName)], true
}

func realPath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

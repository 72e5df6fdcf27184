package installed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
)

// Record is the installed version of a package.
type Record struct {
	Name         string
	Version      string
	ManifestPath string
}

// Resolver looks up installed package versions. It keeps no state between
// lookups: every call reads the filesystem again.
type Resolver struct {
	Root    string         // default search directory
	Modules ModuleResolver // entry file lookup (default: NodeResolver)
	Logger  *log.Logger
}

// NewResolver creates a resolver searching from root, using Node.js lookup
// rules. An empty root means the working directory.
// If logger is nil, log.Default() is used.
func NewResolver(root string, logger *log.Logger) *Resolver {
	if root == "" {
		root = "."
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		Root:    root,
		Modules: NodeResolver{},
		Logger:  logger,
	}
}

// Resolve returns the installed version of name as seen from contextDir,
// typically the directory of the importing module. An empty contextDir
// searches from the resolver's root.
//
// Errors are always *Failure. Corrupt and MissingVersion failures are fatal;
// see [Kind.Fatal].
func (r *Resolver) Resolve(name, contextDir string) (*Record, error) {
	from := contextDir
	if from == "" {
		from = r.Root
	}

	mainPath, err := r.modules().ResolveMain(name, from)
	if err != nil {
		fallback, ok := manifestPathFromError(err)
		if !ok {
			return nil, &Failure{Kind: NotInstalled, Name: name, Err: err}
		}
		mainPath = fallback
	}

	root, ok := packageRoot(name, mainPath)
	if !ok {
		return nil, &Failure{Kind: PathInconsistent, Name: name, Path: mainPath}
	}

	manifestPath := filepath.Join(root, manifestName)
	version, err := readVersion(manifestPath)
	if err != nil {
		return nil, &Failure{Kind: Corrupt, Name: name, Path: manifestPath, Err: err}
	}
	if version == "" {
		return nil, &Failure{Kind: MissingVersion, Name: name, Path: manifestPath}
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		r.logger().Warn("installed version is not semver", "package", name, "version", version)
	}
	r.logger().Debug("resolved installed version", "package", name, "version", version, "manifest", manifestPath)

	return &Record{Name: name, Version: version, ManifestPath: manifestPath}, nil
}

func (r *Resolver) modules() ModuleResolver {
	if r.Modules == nil {
		return NodeResolver{}
	}
	return r.Modules
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func readVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", err
	}
	return pkg.Version, nil
}

// packageRoot returns the directory of package name inside mainPath: the
// path up to the last node_modules/<name> (or node_modules/<scope>/<name>)
// segment run.
func packageRoot(name, mainPath string) (string, bool) {
	sep := string(filepath.Separator)
	parts := strings.Split(name, "/")

	fragment := packagesDir + sep + parts[0]
	if strings.HasPrefix(name, "@") && len(parts) > 1 {
		fragment = packagesDir + sep + parts[0] + sep + parts[1]
	}

	for search := mainPath; ; {
		i := strings.LastIndex(search, fragment)
		if i < 0 {
			return "", false
		}
		end := i + len(fragment)
		if end == len(mainPath) || strings.HasPrefix(mainPath[end:], sep) {
			return mainPath[:end], true
		}
		search = mainPath[:i]
	}
}

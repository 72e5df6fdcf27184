package synth

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depsynth/pkg/installed"
	"github.com/matzehuels/depsynth/pkg/manifest"
	"github.com/matzehuels/depsynth/pkg/modref"
)

// VersionResolver looks up the installed version of a package as seen from
// a directory. *installed.Resolver implements it.
type VersionResolver interface {
	Resolve(name, contextDir string) (*installed.Record, error)
}

// Input holds everything one computation reads.
type Input struct {
	References []modref.Reference // external modules reported by the bundler
	Exclude    []string           // names that are never looked up
	Builtins   modref.Builtins    // runtime modules (default: Node.js built-ins)
	Additional map[string]string  // caller-supplied dependencies, lowest priority
	Base       *manifest.Manifest // base manifest; its dev/peer tables may be rewritten
}

// Reason says why a module was left out of the output.
type Reason string

const (
	ReasonUnparseable      Reason = "unparseable"
	ReasonRelative         Reason = "relative"
	ReasonExcluded         Reason = "excluded"
	ReasonBuiltin          Reason = "builtin"
	ReasonNotInstalled     Reason = "not installed"
	ReasonInconsistentPath Reason = "inconsistent path"
)

// Skip records a module left out of the output.
type Skip struct {
	Name       string
	Identifier string // bundler identifier; empty for base manifest entries
	Reason     Reason
	Err        error
}

// Result is the outcome of [Engine.Compute].
type Result struct {
	// Dependencies is the merged table in insertion order. Sort it with
	// manifest.OrderByKeys (manifest.Render does) before writing it out.
	Dependencies *manifest.Table
	Skipped      []Skip
}

// Engine merges detected externals with the base manifest.
type Engine struct {
	Resolver VersionResolver
	Logger   *log.Logger
}

// New creates an engine. If logger is nil, log.Default() is used.
func New(r VersionResolver, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Resolver: r, Logger: logger}
}

// Compute runs the merge. It returns an error only for fatal lookup failures,
// in which case no result is produced.
func (e *Engine) Compute(in Input) (*Result, error) {
	builtins := in.Builtins
	if builtins == nil {
		builtins = modref.NodeBuiltins()
	}

	c := &computation{
		engine:   e,
		builtins: builtins,
		exclude:  make(map[string]bool, len(in.Exclude)),
		result:   &Result{Dependencies: manifest.NewTable(in.Additional)},
	}
	for _, name := range in.Exclude {
		c.exclude[name] = true
	}

	for _, ref := range in.References {
		if err := c.addExternal(ref); err != nil {
			return nil, err
		}
	}

	if in.Base != nil {
		for _, field := range manifest.DependencyFields {
			if err := c.reconcile(in.Base, field); err != nil {
				return nil, err
			}
		}
	}

	e.logger().Debug("modules to be used in generated manifest", "dependencies", c.result.Dependencies.Map())
	return c.result, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

// computation is the state of one Compute call.
type computation struct {
	engine   *Engine
	builtins modref.Builtins
	exclude  map[string]bool
	result   *Result
}

func (c *computation) skip(s Skip) {
	c.result.Skipped = append(c.result.Skipped, s)
}

// addExternal records the installed version of one bundler reference.
func (c *computation) addExternal(ref modref.Reference) error {
	logger := c.engine.logger()
	name := modref.ParseIdentifier(ref.Identifier)
	logger.Debug("found external module", "identifier", ref.Identifier, "package", name)

	switch {
	case name == "":
		logger.Error("couldn't decipher the module name, ignoring it", "identifier", ref.Identifier)
		c.skip(Skip{Identifier: ref.Identifier, Reason: ReasonUnparseable})
		return nil
	case modref.IsRelative(name):
		logger.Debug("excluded module on a relative path", "identifier", ref.Identifier)
		c.skip(Skip{Name: name, Identifier: ref.Identifier, Reason: ReasonRelative})
		return nil
	case c.exclude[name]:
		logger.Debug("excluded module", "package", name)
		c.skip(Skip{Name: name, Identifier: ref.Identifier, Reason: ReasonExcluded})
		return nil
	case c.builtins.Has(name):
		logger.Debug("built-in module", "package", name)
		c.skip(Skip{Name: name, Identifier: ref.Identifier, Reason: ReasonBuiltin})
		return nil
	}

	version, ok, err := c.lookup(name, ref.Context, ref.Identifier)
	if ok {
		c.result.Dependencies.Set(name, version)
	}
	return err
}

// reconcile applies the policy table to one dependency table of base.
func (c *computation) reconcile(base *manifest.Manifest, field string) error {
	table := base.Table(field)
	logger := c.engine.logger()

	for _, name := range table.Keys() {
		version, _ := table.Get(name)
		action := ActionFor(field, version != "")

		switch action {
		case UsePinned:
			logger.Debug("adding module with pinned version", "table", field, "package", name, "version", version)
			c.result.Dependencies.Set(name, version)
		case KeepOnBase:
			logger.Debug("keeping pinned module on base manifest", "table", field, "package", name, "version", version)
		case ResolveIntoOutput, ResolveIntoBase:
			installedVersion, ok, err := c.lookup(name, "", "")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if action == ResolveIntoOutput {
				c.result.Dependencies.Set(name, installedVersion)
			} else {
				table.Set(name, installedVersion)
				c.result.Dependencies.Delete(name)
			}
		}
	}
	return nil
}

// lookup resolves the installed version of name. Recoverable failures are
// logged and recorded as skips (ok is false); fatal ones are returned.
func (c *computation) lookup(name, contextDir, identifier string) (version string, ok bool, err error) {
	rec, err := c.engine.Resolver.Resolve(name, contextDir)
	if err == nil {
		return rec.Version, true, nil
	}
	if installed.IsFatal(err) {
		return "", false, fmt.Errorf("resolve %s: %w", name, err)
	}

	logger := c.engine.logger()
	reason := ReasonNotInstalled
	if kind, _ := installed.KindOf(err); kind == installed.PathInconsistent {
		reason = ReasonInconsistentPath
		logger.Error("couldn't locate the package root, ignoring it", "package", name, "err", err)
	} else {
		logger.Warn("couldn't resolve an installed version, ignoring it", "package", name, "err", err)
	}
	c.skip(Skip{Name: name, Identifier: identifier, Reason: reason, Err: err})
	return "", false, nil
}

// Names returns the skipped names with the given reason, sorted.
func (r *Result) Names(reason Reason) []string {
	set := make(map[string]bool)
	for _, s := range r.Skipped {
		if s.Reason == reason && s.Name != "" {
			set[s.Name] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

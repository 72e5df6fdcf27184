package synth

import "github.com/matzehuels/depsynth/pkg/manifest"

// Action is what reconciliation does with one base manifest entry.
type Action int

const (
	// UsePinned copies the pinned version into the output.
	UsePinned Action = iota + 1
	// KeepOnBase leaves the entry on the base manifest and out of the output.
	KeepOnBase
	// ResolveIntoOutput looks up the installed version and writes it to the
	// output.
	ResolveIntoOutput
	// ResolveIntoBase looks up the installed version, writes it back into
	// the base table and removes the name from the output.
	ResolveIntoBase
)

func (a Action) String() string {
	switch a {
	case UsePinned:
		return "use pinned"
	case KeepOnBase:
		return "keep on base"
	case ResolveIntoOutput:
		return "resolve into output"
	case ResolveIntoBase:
		return "resolve into base"
	default:
		return "unknown"
	}
}

type rule struct {
	field  string
	pinned bool
}

var policy = map[rule]Action{
	{manifest.FieldDependencies, true}:      UsePinned,
	{manifest.FieldDependencies, false}:     ResolveIntoOutput,
	{manifest.FieldDevDependencies, true}:   KeepOnBase,
	{manifest.FieldDevDependencies, false}:  ResolveIntoBase,
	{manifest.FieldPeerDependencies, true}:  KeepOnBase,
	{manifest.FieldPeerDependencies, false}: ResolveIntoBase,
}

// ActionFor returns the reconciliation action for an entry of the given
// base manifest table. Unknown tables are left alone.
func ActionFor(field string, pinned bool) Action {
	if a, ok := policy[rule{field, pinned}]; ok {
		return a
	}
	return KeepOnBase
}

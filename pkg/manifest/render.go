package manifest

import (
	"bytes"
	"encoding/json"
)

// Indent is the indentation of rendered manifests.
const Indent = "    "

// Render returns base with its dependencies replaced by deps sorted by name,
// as indented JSON with a trailing newline. The "dependencies" field keeps
// its position in base, or is appended when base has none. base itself is
// not modified.
func Render(base *Manifest, deps *Table) ([]byte, error) {
	if base == nil {
		base = Default()
	}
	out := base.With(FieldDependencies, OrderByKeys(deps))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

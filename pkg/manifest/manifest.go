package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	apperrors "github.com/matzehuels/depsynth/pkg/errors"
)

// Dependency table fields of a package.json.
const (
	FieldDependencies     = "dependencies"
	FieldDevDependencies  = "devDependencies"
	FieldPeerDependencies = "peerDependencies"
)

// DependencyFields lists the dependency tables in reconciliation order.
var DependencyFields = []string{FieldDependencies, FieldDevDependencies, FieldPeerDependencies}

const (
	defaultName    = "generated-package-json"
	defaultVersion = "0.0.1"
)

// Manifest is a package.json object that keeps its fields in document order.
// Dependency tables are held as *Table values and may be edited in place;
// every other field is kept as raw JSON.
type Manifest struct {
	keys   []string
	fields map[string]json.RawMessage
	tables map[string]*Table
}

// New returns a manifest with only a name and version.
func New(name, version string) *Manifest {
	m := &Manifest{}
	_ = m.Set("name", name)
	_ = m.Set("version", version)
	return m
}

// Default returns the base manifest used when the caller supplies none.
func Default() *Manifest {
	return New(defaultName, defaultVersion)
}

// Load reads a manifest from a package.json file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "base manifest not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidManifest, err, "can't parse base manifest %s", path)
	}
	return m, nil
}

// Parse decodes a manifest from JSON.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromMap builds a manifest from a decoded object, fields sorted by key.
func fromMap(obj map[string]any) (*Manifest, error) {
	m := &Manifest{}
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if err := m.Set(k, obj[k]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Keys returns the field names in document order.
func (m *Manifest) Keys() []string {
	return slices.Clone(m.keys)
}

// Has reports whether the field is present.
func (m *Manifest) Has(field string) bool {
	_, raw := m.fields[field]
	_, table := m.tables[field]
	return raw || table
}

// Set stores a field, keeping its position when it already exists.
// *Table values become editable dependency tables.
func (m *Manifest) Set(field string, v any) error {
	if t, ok := v.(*Table); ok && t != nil {
		m.SetTable(field, t)
		return nil
	}
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	m.touch(field)
	delete(m.tables, field)
	m.fields[field] = raw
	return nil
}

// Table returns the dependency table stored under field, or nil.
func (m *Manifest) Table(field string) *Table {
	return m.tables[field]
}

// SetTable stores t under field, keeping the field's position.
func (m *Manifest) SetTable(field string, t *Table) {
	m.touch(field)
	delete(m.fields, field)
	m.tables[field] = t
}

// Dependencies returns the "dependencies" table, or nil.
func (m *Manifest) Dependencies() *Table { return m.Table(FieldDependencies) }

// DevDependencies returns the "devDependencies" table, or nil.
func (m *Manifest) DevDependencies() *Table { return m.Table(FieldDevDependencies) }

// PeerDependencies returns the "peerDependencies" table, or nil.
func (m *Manifest) PeerDependencies() *Table { return m.Table(FieldPeerDependencies) }

// With returns a shallow copy of m with field set to t. Tables other than
// field are shared with m.
func (m *Manifest) With(field string, t *Table) *Manifest {
	c := &Manifest{
		keys:   slices.Clone(m.keys),
		fields: maps.Clone(m.fields),
		tables: maps.Clone(m.tables),
	}
	c.SetTable(field, t)
	return c
}

func (m *Manifest) touch(field string) {
	if m.fields == nil {
		m.fields = make(map[string]json.RawMessage)
	}
	if m.tables == nil {
		m.tables = make(map[string]*Table)
	}
	if !m.Has(field) {
		m.keys = append(m.keys, field)
	}
}

// MarshalJSON writes the fields in document order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		if t, ok := m.tables[k]; ok {
			data, err := t.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		} else {
			buf.Write(m.fields[k])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a package.json object. Dependency fields holding an
// object must map names to version strings.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	*m = Manifest{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		if slices.Contains(DependencyFields, key) && isObject(raw) {
			t := &Table{}
			if err := t.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			m.SetTable(key, t)
			return nil
		}
		m.touch(key)
		delete(m.tables, key)
		m.fields[key] = raw
		return nil
	})
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

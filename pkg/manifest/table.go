package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Table is an insertion-ordered mapping from package name to version.
// The zero value is an empty table ready to use.
type Table struct {
	keys   []string
	values map[string]string
}

// NewTable returns a table holding the entries of m in key order.
func NewTable(m map[string]string) *Table {
	t := &Table{}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		t.Set(k, m[k])
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Get returns the version stored for name.
func (t *Table) Get(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[name]
	return v, ok
}

// Has reports whether name is present.
func (t *Table) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Set stores version for name. A new name is appended; an existing one keeps
// its position.
func (t *Table) Set(name, version string) {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, ok := t.values[name]; !ok {
		t.keys = append(t.keys, name)
	}
	t.values[name] = version
}

// Delete removes name, if present.
func (t *Table) Delete(name string) {
	if t == nil {
		return
	}
	if _, ok := t.values[name]; !ok {
		return
	}
	delete(t.values, name)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == name })
}

// Keys returns the names in table order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.keys)
}

// Map returns the entries as a plain map.
func (t *Table) Map() map[string]string {
	m := make(map[string]string, t.Len())
	for _, k := range t.Keys() {
		m[k] = t.values[k]
	}
	return m
}

// MarshalJSON writes the entries as a JSON object in table order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, k, t.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of strings, keeping document order.
// A repeated key keeps its first position and its last value.
func (t *Table) UnmarshalJSON(data []byte) error {
	*t = Table{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%s: version must be a string: %w", key, err)
		}
		t.Set(key, v)
		return nil
	})
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshal(key)
	if err != nil {
		return err
	}
	v, err := marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshal encodes v without HTML escaping, so versions such as ">=1 <2"
// are written as-is.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeObject calls fn for every member of the JSON object in data, in
// document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

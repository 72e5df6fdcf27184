package manifest

import "slices"

// OrderByKeys returns a copy of t with its entries sorted by name, comparing
// bytes. Values are unchanged; applying it twice equals applying it once.
func OrderByKeys(t *Table) *Table {
	sorted := &Table{}
	keys := t.Keys()
	slices.Sort(keys)
	for _, k := range keys {
		v, _ := t.Get(k)
		sorted.Set(k, v)
	}
	return sorted
}

// Order sorts the keys of string-keyed mappings. Tables and string maps come
// back as sorted *Table values, map[string]any as a *Manifest with sorted
// fields; any other value is returned unchanged.
func Order(v any) any {
	switch m := v.(type) {
	case *Table:
		if m == nil {
			return v
		}
		return OrderByKeys(m)
	case map[string]string:
		if m == nil {
			return v
		}
		return NewTable(m)
	case map[string]any:
		if m == nil {
			return v
		}
		obj, err := fromMap(m)
		if err != nil {
			return v
		}
		return obj
	default:
		return v
	}
}

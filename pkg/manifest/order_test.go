package manifest

import (
	"reflect"
	"slices"
	"testing"
)

func TestOrderByKeys(t *testing.T) {
	var tbl Table
	for _, k := range []string{"zod", "@types/node", "Zebra", "lodash", "left-pad", "@aws-sdk/client-s3"} {
		tbl.Set(k, k+"-v")
	}

	sorted := OrderByKeys(&tbl)

	want := []string{"@aws-sdk/client-s3", "@types/node", "Zebra", "left-pad", "lodash", "zod"}
	if got := sorted.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	for _, k := range want {
		if v, _ := sorted.Get(k); v != k+"-v" {
			t.Errorf("Get(%q) = %q, want %q", k, v, k+"-v")
		}
	}
	if !slices.IsSorted(sorted.Keys()) {
		t.Error("keys are not in byte order")
	}

	twice := OrderByKeys(sorted)
	if !reflect.DeepEqual(twice.Keys(), sorted.Keys()) || !reflect.DeepEqual(twice.Map(), sorted.Map()) {
		t.Error("OrderByKeys is not idempotent")
	}

	if got := tbl.Keys()[0]; got != "zod" {
		t.Errorf("input table was reordered: first key %q", got)
	}
}

func TestOrderByKeysEmpty(t *testing.T) {
	if got := OrderByKeys(nil); got.Len() != 0 {
		t.Errorf("OrderByKeys(nil).Len() = %d, want 0", got.Len())
	}
}

func TestOrder(t *testing.T) {
	t.Run("string map", func(t *testing.T) {
		got, ok := Order(map[string]string{"b": "2", "a": "1"}).(*Table)
		if !ok {
			t.Fatalf("Order(map[string]string) returned %T", got)
		}
		if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"a", "b"}) {
			t.Errorf("Keys() = %v", keys)
		}
	})

	t.Run("any map", func(t *testing.T) {
		got, ok := Order(map[string]any{"version": "1.0.0", "name": "x"}).(*Manifest)
		if !ok {
			t.Fatalf("Order(map[string]any) returned %T", got)
		}
		if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"name", "version"}) {
			t.Errorf("Keys() = %v", keys)
		}
	})

	passthrough := []any{
		nil,
		"string",
		42,
		[]string{"b", "a"},
		(*Table)(nil),
		map[string]string(nil),
	}
	for _, v := range passthrough {
		if got := Order(v); !reflect.DeepEqual(got, v) {
			t.Errorf("Order(%#v) = %#v, want unchanged", v, got)
		}
	}
}

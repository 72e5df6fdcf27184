package synth

import (
	"testing"

	"github.com/matzehuels/depsynth/pkg/manifest"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		field  string
		pinned bool
		want   Action
	}{
		{manifest.FieldDependencies, true, UsePinned},
		{manifest.FieldDependencies, false, ResolveIntoOutput},
		{manifest.FieldDevDependencies, true, KeepOnBase},
		{manifest.FieldDevDependencies, false, ResolveIntoBase},
		{manifest.FieldPeerDependencies, true, KeepOnBase},
		{manifest.FieldPeerDependencies, false, ResolveIntoBase},
		{"optionalDependencies", false, KeepOnBase},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := ActionFor(tt.field, tt.pinned); got != tt.want {
				t.Errorf("ActionFor(%q, %v) = %v, want %v", tt.field, tt.pinned, got, tt.want)
			}
		})
	}
}

func TestPolicyCoversEveryTable(t *testing.T) {
	for _, field := range manifest.DependencyFields {
		for _, pinned := range []bool{true, false} {
			if _, ok := policy[rule{field, pinned}]; !ok {
				t.Errorf("no rule for (%s, pinned=%v)", field, pinned)
			}
		}
	}
}

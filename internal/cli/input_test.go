package cli

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/depsynth/pkg/errors"
	"github.com/matzehuels/depsynth/pkg/modref"
)

func TestParseReferences(t *testing.T) {
	appDir := filepath.Join(string(filepath.Separator), "app", "src")
	issuer := filepath.Join(appDir, "index.js")

	tests := []struct {
		name  string
		input string
		want  []modref.Reference
	}{
		{
			name:  "empty",
			input: "  \n",
			want:  nil,
		},
		{
			name:  "json strings",
			input: `["external \"lodash/get\"", "javascript/esm|/app/node_modules/@foo/bar/x.js"]`,
			want: []modref.Reference{
				{Identifier: `external "lodash/get"`},
				{Identifier: "javascript/esm|/app/node_modules/@foo/bar/x.js"},
			},
		},
		{
			name:  "json objects",
			input: `[{"identifier": "external \"express\"", "context": "/app/api"}, "external \"chalk\""]`,
			want: []modref.Reference{
				{Identifier: `external "express"`, Context: "/app/api"},
				{Identifier: `external "chalk"`},
			},
		},
		{
			name: "stats file",
			input: `{"modules": [
				{"identifier": "javascript/auto|` + filepath.ToSlash(issuer) + `", "issuer": ""},
				{"identifier": "external \"lodash\"", "issuer": "javascript/auto|` + filepath.ToSlash(issuer) + `"},
				{"identifier": "external \"fs\"", "issuer": "` + filepath.ToSlash(issuer) + `?query"},
				{"identifier": "external \"chalk\""}
			]}`,
			want: []modref.Reference{
				{Identifier: `external "lodash"`, Context: appDir},
				{Identifier: `external "fs"`, Context: appDir},
				{Identifier: `external "chalk"`},
			},
		},
		{
			name:  "lines",
			input: "# externals\nexternal \"lodash\"\n\n  external \"chalk\"  \n",
			want: []modref.Reference{
				{Identifier: `external "lodash"`},
				{Identifier: `external "chalk"`},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReferences(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("parseReferences: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseReferences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseReferencesInvalid(t *testing.T) {
	for _, input := range []string{`[1, 2]`, `["unterminated`, `{"modules": 3}`} {
		if _, err := parseReferences(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("parseReferences(%q) error = %v, want INVALID_INPUT", input, err)
		}
	}
}

func TestReadReferences(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "externals.txt"), "external \"lodash\"\n")

	refs, err := readReferences(path, nil)
	if err != nil || len(refs) != 1 {
		t.Fatalf("readReferences(file) = %v, %v", refs, err)
	}

	refs, err = readReferences("-", strings.NewReader(`["external \"chalk\""]`))
	if err != nil || len(refs) != 1 || refs[0].Identifier != `external "chalk"` {
		t.Fatalf("readReferences(stdin) = %v, %v", refs, err)
	}

	if refs, err := readReferences("", nil); err != nil || refs != nil {
		t.Errorf("readReferences(\"\") = %v, %v; want nothing", refs, err)
	}

	if _, err := readReferences(filepath.Join(dir, "missing.json"), nil); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestIssuerDir(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "app", "src", "a.js")
	tests := []struct {
		issuer string
		want   string
	}{
		{"", ""},
		{abs, filepath.Dir(abs)},
		{"javascript/auto|" + abs, filepath.Dir(abs)},
		{abs + "?raw", filepath.Dir(abs)},
		{"relative/a.js", ""},
	}
	for _, tt := range tests {
		if got := issuerDir(tt.issuer); got != tt.want {
			t.Errorf("issuerDir(%q) = %q, want %q", tt.issuer, got, tt.want)
		}
	}
}

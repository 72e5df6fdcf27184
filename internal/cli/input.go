package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depsynth/pkg/errors"
	"github.com/matzehuels/depsynth/pkg/modref"
)

// statsFile is the part of a bundler stats dump that lists every module of
// the build.
type statsFile struct {
	Modules []statsModule `json:"modules"`
}

type statsModule struct {
	Identifier string `json:"identifier"`
	Issuer     string `json:"issuer"`
}

// readReferences loads module references from path, or from stdin when path
// is "-". An empty path yields no references.
func readReferences(path string, stdin io.Reader) ([]modref.Reference, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return parseReferences(stdin)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "module list not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	refs, err := parseReferences(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "can't read module list %s", path)
	}
	return refs, nil
}

// parseReferences detects the input format from its first non-blank byte:
//   - '[': a JSON array of identifiers or {"identifier", "context"} objects
//   - '{': a bundler stats object; only external modules are kept
//   - anything else: one identifier per line, '#' starts a comment
func parseReferences(r io.Reader) ([]modref.Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		return parseReferenceList(trimmed)
	case '{':
		return parseStats(trimmed)
	default:
		return parseLines(trimmed)
	}
}

func parseReferenceList(data []byte) ([]modref.Reference, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid module list")
	}

	refs := make([]modref.Reference, 0, len(items))
	for i, item := range items {
		var ref modref.Reference
		switch {
		case bytes.HasPrefix(item, []byte(`"`)):
			if err := json.Unmarshal(item, &ref.Identifier); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "module list entry %d", i)
			}
		case bytes.HasPrefix(item, []byte("{")):
			if err := json.Unmarshal(item, &ref); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "module list entry %d", i)
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "module list entry %d: want a string or an object, got %s", i, item)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseStats(data []byte) ([]modref.Reference, error) {
	var stats statsFile
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid stats file")
	}

	var refs []modref.Reference
	for _, m := range stats.Modules {
		if !modref.IsExternal(m.Identifier) {
			continue
		}
		refs = append(refs, modref.Reference{
			Identifier: m.Identifier,
			Context:    issuerDir(m.Issuer),
		})
	}
	return refs, nil
}

// issuerDir returns the directory of the module that imported an external.
// Issuer identifiers may carry loader or layer prefixes separated by '|'
// and a resource query after '?'.
func issuerDir(issuer string) string {
	if i := strings.LastIndex(issuer, "|"); i >= 0 {
		issuer = issuer[i+1:]
	}
	if i := strings.Index(issuer, "?"); i >= 0 {
		issuer = issuer[:i]
	}
	if issuer == "" || !filepath.IsAbs(issuer) {
		return ""
	}
	return filepath.Dir(issuer)
}

func parseLines(data []byte) ([]modref.Reference, error) {
	var refs []modref.Reference
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, modref.Reference{Identifier: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

package modref

import "strings"

const nodePrefix = "node:"

// Builtins is a set of module names provided by the runtime itself.
type Builtins map[string]bool

// nodeBuiltinModules lists the top-level Node.js core modules, matching
// module.builtinModules without private ("_"-prefixed) entries and subpaths.
//
// To update this list, run:
//
//	node -p "require('module').builtinModules.filter(m => !m.startsWith('_') && !m.includes('/')).join('\n')"
var nodeBuiltinModules = []string{
	"assert",
	"async_hooks",
	"buffer",
	"child_process",
	"cluster",
	"console",
	"constants",
	"crypto",
	"dgram",
	"diagnostics_channel",
	"dns",
	"domain",
	"events",
	"fs",
	"http",
	"http2",
	"https",
	"inspector",
	"module",
	"net",
	"os",
	"path",
	"perf_hooks",
	"process",
	"punycode",
	"querystring",
	"readline",
	"repl",
	"stream",
	"string_decoder",
	"sys",
	"timers",
	"tls",
	"trace_events",
	"tty",
	"url",
	"util",
	"v8",
	"vm",
	"wasi",
	"worker_threads",
	"zlib",
}

// nodeOnlyPrefixed are built-ins that only exist with the "node:" scheme.
var nodeOnlyPrefixed = []string{
	"node:sea",
	"node:sqlite",
	"node:test",
	"node:test/reporters",
}

// NodeBuiltins returns a fresh set of the Node.js built-in module names.
func NodeBuiltins() Builtins {
	b := make(Builtins, len(nodeBuiltinModules)+len(nodeOnlyPrefixed))
	for _, name := range nodeBuiltinModules {
		b[name] = true
	}
	for _, name := range nodeOnlyPrefixed {
		b[name] = true
	}
	return b
}

// NewBuiltins returns a set holding names.
func NewBuiltins(names ...string) Builtins {
	b := make(Builtins, len(names))
	b.Add(names...)
	return b
}

// Add inserts names into the set.
func (b Builtins) Add(names ...string) {
	for _, name := range names {
		if name != "" {
			b[name] = true
		}
	}
}

// Has reports whether name is a built-in. Both "fs" and "node:fs" match an
// "fs" entry, and subpaths such as "fs/promises" match their top-level module.
func (b Builtins) Has(name string) bool {
	if b[name] {
		return true
	}
	bare := strings.TrimPrefix(name, nodePrefix)
	if b[bare] {
		return true
	}
	if i := strings.IndexByte(bare, '/'); i > 0 && !strings.HasPrefix(bare, scopePrefix) {
		return b[bare[:i]]
	}
	return false
}

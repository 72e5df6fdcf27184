// Package buildinfo reports which depsynth build is running.
//
// Release builds set the variables below via ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/depsynth/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/depsynth/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/depsynth/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/depsynth
//
// Builds made with "go install" leave them unset; the module version and VCS
// stamp recorded by the toolchain are used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info identifies a build.
type Info struct {
	Version string
	Commit  string
	Date    string
	Dirty   bool // built from a modified work tree
}

// Get returns the ldflags values, filling defaults from the binary's
// embedded build information.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(Info{Version: Version, Commit: Commit, Date: Date}, bi)
}

func resolve(info Info, bi *debug.BuildInfo) Info {
	if bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

func (i Info) commit() string {
	if i.Dirty {
		return i.Commit + "-dirty"
	}
	return i.Commit
}

// Template returns the version template for cobra.
func (i Info) Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.commit(), i.Date)
}

// Package version reports what build of gaexport is running
package version

import "runtime/debug"

// BuildInfo describes the running binary
type BuildInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X gaexport/internal/core/version.version=v1.2.0 ..."
var (
	version = ""
	commit  = ""
	date    = ""
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// Info returns linker-provided values, falling back to the module
// version and vcs stamps the go tool embeds
func Info() BuildInfo {
	bi := BuildInfo{Name: "gaexport", Version: version, Commit: commit, Date: date}
	if info, ok := readBuildInfo(); ok && info != nil {
		if bi.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			bi.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "" {
					bi.Date = s.Value
				}
			}
		}
	}
	if bi.Version == "" {
		bi.Version = "dev"
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}

// Short is the version plus an abbreviated commit, e.g. v1.2.0+3f2a9c1
func (b BuildInfo) Short() string {
	if b.Commit == "none" || b.Commit == "" {
		return b.Version
	}
	c := b.Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return b.Version + "+" + c
}

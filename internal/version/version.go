// Package version reports how the pfltk binary was built.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X .../internal/version.Commit=...".
// Blank values fall back to the VCS stamp the Go linker embeds.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes one build.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Dirty     bool
}

// Get merges the ldflags values with the embedded build info.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}

	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}

	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// ShortCommit is the first seven characters of the commit.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

func (i Info) String() string {
	commit := i.ShortCommit()
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("pfltk %s (commit: %s, built: %s)", i.Version, commit, i.BuildTime)
}

// String returns the version line printed by `pfltk version`.
func String() string {
	return Get().String()
}

// UserAgent identifies pfltk to the War API.
func UserAgent() string {
	i := Get()
	return fmt.Sprintf("pfltk/%s (%s)", i.Version, i.ShortCommit())
}

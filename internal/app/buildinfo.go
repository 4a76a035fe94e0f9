package app

import (
	"fmt"
	"runtime/debug"
)

const appName = "mealink"

// Set with -ldflags "-X github.com/heartmarshall/mealink-backend/internal/app.version=v1.2.0"
// (and .commit, .buildTime) by the release build.
var (
	version   = ""
	commit    = ""
	buildTime = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// String renders the info for startup logs, /health and `pantry version`.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildTime)
}

// Build returns the linker-provided build info. Fields the release build did
// not set fall back to what the Go toolchain embedded (module version and
// VCS stamps for `go install`), and finally to "dev"/"unknown".
func Build() BuildInfo {
	bi, _ := debug.ReadBuildInfo()
	return resolveBuild(version, commit, buildTime, bi)
}

func resolveBuild(ver, rev, built string, bi *debug.BuildInfo) BuildInfo {
	if bi != nil {
		if ver == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			ver = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && rev == "":
				rev = shortRevision(s.Value)
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}
	return BuildInfo{
		Version:   orDefault(ver, "dev"),
		Commit:    orDefault(rev, "unknown"),
		BuildTime: orDefault(built, "unknown"),
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

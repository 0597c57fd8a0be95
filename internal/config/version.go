package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X .../internal/config.version=...".
var (
	version   = "dev"
	build     = "unknown"
	gitCommit = "unknown"
)

// VersionInfo is the build metadata reported by /api/version and the
// get_version tool.
type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// String formats the info for -version output.
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", v.Version, v.Build, v.GitCommit)
}

// Version returns the build metadata. When the commit was not injected it
// falls back to the VCS stamp the Go toolchain embeds.
func Version() VersionInfo {
	info := VersionInfo{
		Version:   version,
		Build:     build,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
	}
	if info.GitCommit == "unknown" {
		if rev, ok := vcsRevision(); ok {
			info.GitCommit = rev
		}
	}
	return info
}

func vcsRevision() (string, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12], true
			}
			return s.Value, true
		}
	}
	return "", false
}

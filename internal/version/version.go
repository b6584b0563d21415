// Package version provides version information for the QOSST Scope tools
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables that can be set via ldflags
var (
	// Version is the release of the tool set
	Version = "0.3.0"

	// GitCommit is the git sha1 that was compiled. Falls back to the VCS
	// stamp recorded by the Go toolchain when not set
	GitCommit = "unknown"

	// BuildDate is the date the binary was built
	BuildDate = "unknown"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string
	GitCommit string
	Modified  bool
	BuildDate string
	GoVersion string
	Platform  string
}

// GetBuildInfo returns complete build information
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "unknown" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	return info
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// GetFullVersion returns the version with the short commit appended when known
func GetFullVersion() string {
	info := GetBuildInfo()
	if info.GitCommit == "unknown" {
		return info.Version
	}
	return fmt.Sprintf("%s-%s", info.Version, shortCommit(info.GitCommit))
}

// GetVersionInfo returns formatted version information
func GetVersionInfo(appName string) string {
	info := GetBuildInfo()

	result := fmt.Sprintf("%s version %s", appName, info.Version)
	if info.GitCommit != "unknown" {
		result += fmt.Sprintf(" (commit %s", shortCommit(info.GitCommit))
		if info.Modified {
			result += ", modified"
		}
		result += ")"
	}
	if info.BuildDate != "unknown" {
		result += fmt.Sprintf("\nBuilt: %s", info.BuildDate)
	}

	result += fmt.Sprintf("\nGo: %s", info.GoVersion)
	result += fmt.Sprintf("\nPlatform: %s", info.Platform)
	return result
}

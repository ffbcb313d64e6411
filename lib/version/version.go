// Copyright 2026 The Draugr Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the draugr
// binary.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/Misza13/draugr/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When nothing is injected (go install, go run), the VCS stamp that the
// Go toolchain records in the binary is used instead.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// buildStamp returns commit, dirty, and time, preferring injected
// values and falling back to the toolchain's VCS settings.
func buildStamp(settings []debug.BuildSetting) (commit string, dirty bool, builtAt string) {
	commit, dirty, builtAt = GitCommit, GitDirty == "true", BuildTime
	if commit != "unknown" {
		return commit, dirty, builtAt
	}
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		case "vcs.time":
			if builtAt == "unknown" {
				builtAt = setting.Value
			}
		}
	}
	return commit, dirty, builtAt
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	var settings []debug.BuildSetting
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		settings = buildInfo.Settings
	}
	return format(settings)
}

func format(settings []debug.BuildSetting) string {
	commit, dirty, builtAt := buildStamp(settings)
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, builtAt)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports which drawcheck build produced a verdict. Release
// builds stamp the values at link time:
//
//	go build -ldflags "-X drawcheck/internal/version.Version=v1.4.0 \
//	  -X drawcheck/internal/version.GitCommit=$(git rev-parse --short HEAD) \
//	  -X drawcheck/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd
//
// Builds without ldflags fall back to the module version and VCS stamp Go
// records in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	devVersion = "0.0.0-development"
	unknown    = "unknown"
)

var (
	// Version is the release tag of the binary
	Version = devVersion

	// GitCommit is the short commit hash the binary was built from
	GitCommit = unknown

	// BuildDate is the UTC build time, RFC 3339
	BuildDate = unknown

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		Version, GitCommit, BuildDate = fromBuildInfo(info, Version, GitCommit, BuildDate)
	}
}

// fromBuildInfo fills the values ldflags left at their defaults
func fromBuildInfo(info *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if version == devVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == unknown && len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		case "vcs.time":
			if date == unknown {
				date = s.Value
			}
		}
	}
	return version, commit, date
}

// Info is the one-line banner printed by drawcheck version
func Info() string {
	return fmt.Sprintf("drawcheck %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, GitCommit, BuildDate, GoVersion, Platform)
}

// Full returns the build details for machine-readable output
func Full() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
	}
}

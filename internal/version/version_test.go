// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "drawcheck", Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-10-01T08:00:00Z"},
		},
	}

	tests := []struct {
		name                  string
		version, commit, date string
		want                  [3]string
	}{
		{"unstamped build", devVersion, unknown, unknown, [3]string{"v1.4.0", "0123456", "2026-10-01T08:00:00Z"}},
		{"ldflags win", "v2.0.0", "fedcba9", "2026-10-15T00:00:00Z", [3]string{"v2.0.0", "fedcba9", "2026-10-15T00:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c, d := fromBuildInfo(info, tt.version, tt.commit, tt.date)
			assert.Equal(t, tt.want, [3]string{v, c, d})
		})
	}
}

func TestFromBuildInfo_DevelBuild(t *testing.T) {
	info := &debug.BuildInfo{
		Main:     debug.Module{Path: "drawcheck", Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
	}

	v, c, d := fromBuildInfo(info, devVersion, unknown, unknown)

	assert.Equal(t, devVersion, v)
	assert.Equal(t, unknown, c, "a truncated revision is ignored")
	assert.Equal(t, unknown, d)
}

func TestInfoAndFull(t *testing.T) {
	assert.Contains(t, Info(), "drawcheck "+Version)
	full := Full()
	assert.Equal(t, Version, full["version"])
	assert.Equal(t, GitCommit, full["commit"])
	assert.Len(t, full, 5)
}

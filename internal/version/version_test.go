package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfo_Short(t *testing.T) {
	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{"release", BuildInfo{Version: "v1.2.3", GitCommit: "abcdef0123"}, "v1.2.3 (abcdef0)"},
		{"dev with commit", BuildInfo{Version: "dev", GitCommit: "abcdef0123"}, "dev-abcdef0"},
		{"no commit", BuildInfo{Version: "v1.0.0", GitCommit: "unknown"}, "v1.0.0"},
		{"short commit", BuildInfo{Version: "dev", GitCommit: "abc"}, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.info.Short())
		})
	}
}

func TestBuildInfo_IsRelease(t *testing.T) {
	assert.True(t, (&BuildInfo{Version: "v1.0.0"}).IsRelease())
	assert.False(t, (&BuildInfo{Version: "dev"}).IsRelease())
	assert.False(t, (&BuildInfo{Version: "dev-abcdef0"}).IsRelease())
}

func TestBuildInfo_Detailed(t *testing.T) {
	info := &BuildInfo{
		Version:   "v1.0.0",
		GitCommit: "abcdef0123",
		BuildTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
		Dirty:     true,
	}

	assert.Equal(t, "Version: v1.0.0\n"+
		"Build: release\n"+
		"Commit: abcdef0123\n"+
		"Built: 2024-01-02T03:04:05Z\n"+
		"Go: go1.24.4\n"+
		"Platform: linux/amd64\n"+
		"Working directory: dirty", info.Detailed())

	dev := &BuildInfo{Version: "dev", GitCommit: "unknown", GoVersion: "go1.24.4", Platform: "linux/amd64"}
	assert.Equal(t, "Version: dev\nBuild: development\nGo: go1.24.4\nPlatform: linux/amd64", dev.Detailed())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("unknown").IsZero())
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, 2024, parseTime("2024-05-06T07:08:09Z").Year())
	assert.Equal(t, 6, parseTime("2024-05-06 07:08:09").Day())
}

package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func withVars(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	pv, pc, pb := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, buildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = pv, pc, pb })
}

func TestFromBuildInfo_LinkerFlagsWin(t *testing.T) {
	withVars(t, "v1.2.0", "abcdef0123", "2026-01-02T03:04:05Z")
	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	}

	info := fromBuildInfo(bi, true)
	if info.Version != "v1.2.0" || !info.IsRelease {
		t.Errorf("unexpected version info: %+v", info)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected truncated linker commit, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected linker build time, got %v", info.BuildDate)
	}
	if info.GoVersion != "go1.25.0" {
		t.Errorf("expected go version, got %q", info.GoVersion)
	}
}

func TestFromBuildInfo_VCSFallback(t *testing.T) {
	withVars(t, "dev", "", "")
	bi := &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1234567890"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-06-01T12:00:00Z"},
		},
	}

	info := fromBuildInfo(bi, true)
	if info.IsRelease {
		t.Error("dev build must not be a release")
	}
	if info.Short() != "dev-1234567-dirty" {
		t.Errorf("unexpected short version %q", info.Short())
	}
	if !info.BuildDate.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
}

func TestFromBuildInfo_NoBuildInfo(t *testing.T) {
	withVars(t, "dev", "", "")
	info := fromBuildInfo(nil, false)
	if info.Short() != "dev" {
		t.Errorf("expected plain dev, got %q", info.Short())
	}
	if info.String() != "dev" {
		t.Errorf("expected plain dev string, got %q", info.String())
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.0.0", GitCommit: "abc1234", GoVersion: "go1.25.0",
		BuildDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s := info.String()
	for _, want := range []string{"v1.0.0-abc1234", "go1.25.0", "built 2026-03-01T00:00:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}

func TestGet(t *testing.T) {
	if Get().Version == "" {
		t.Error("expected a version")
	}
}

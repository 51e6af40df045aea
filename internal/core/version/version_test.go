package version

import (
	"runtime/debug"
	"testing"

	"gaexport/internal/platform/testkit"
)

func TestInfo_FallsBackToBuildSettings(t *testing.T) {
	testkit.Swap(t, &readBuildInfo, func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.3.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "3f2a9c1d0e"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			},
		}, true
	})

	bi := Info()
	if bi.Name != "gaexport" || bi.Version != "v0.3.1" || bi.Date != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected info %+v", bi)
	}
	if got := bi.Short(); got != "v0.3.1+3f2a9c1" {
		t.Fatalf("Short() = %q", got)
	}
}

func TestInfo_LinkerValuesWin(t *testing.T) {
	testkit.Swap(t, &version, "v9.9.9")
	testkit.Swap(t, &commit, "abc")
	testkit.Swap(t, &readBuildInfo, func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.0.1"}}, true
	})

	bi := Info()
	if bi.Version != "v9.9.9" || bi.Commit != "abc" || bi.Date != "unknown" {
		t.Fatalf("unexpected info %+v", bi)
	}
	if got := bi.Short(); got != "v9.9.9+abc" {
		t.Fatalf("Short() = %q", got)
	}
}

func TestInfo_NoBuildInfo(t *testing.T) {
	testkit.Swap(t, &readBuildInfo, func() (*debug.BuildInfo, bool) { return nil, false })

	bi := Info()
	if bi.Version != "dev" || bi.Commit != "none" || bi.Short() != "dev" {
		t.Fatalf("unexpected info %+v", bi)
	}
}

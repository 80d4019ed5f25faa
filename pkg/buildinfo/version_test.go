package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	embedded := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Path: "github.com/matzehuels/bookdash", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
		},
	}
	read := func() (*debug.BuildInfo, bool) { return embedded, true }

	tests := []struct {
		name                  string
		version, commit, date string
		want                  Info
	}{
		{
			name:    "defaults use embedded info",
			version: "dev", commit: "none", date: "unknown",
			want: Info{Version: "v0.3.1", Commit: "abc123", Date: "2025-01-02T03:04:05Z", GoVersion: "go1.24.0"},
		},
		{
			name:    "ldflags win",
			version: "v1.0.0", commit: "fff", date: "today",
			want: Info{Version: "v1.0.0", Commit: "fff", Date: "today", GoVersion: "go1.24.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.version, tt.commit, tt.date, read); got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveDevelBuild(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	if got := resolve("dev", "none", "unknown", read); got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}

	missing := func() (*debug.BuildInfo, bool) { return nil, false }
	if got := resolve("dev", "none", "unknown", missing); got.Commit != "none" || got.GoVersion == "" {
		t.Errorf("resolve() = %+v", got)
	}
}

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: ", "commit: ", "built: ", "go: "} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q: %s", want, s)
		}
	}
}

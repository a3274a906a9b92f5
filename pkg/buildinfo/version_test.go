package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/matzehuels/wiregraph", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := fill(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	want := Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}
	if got != want {
		t.Errorf("fill() = %+v, want %+v", got, want)
	}

	set := Info{Version: "v1.0.0", Commit: "def456", Date: "2026-10-01"}
	if got := fill(set, bi); got != set {
		t.Errorf("fill() overrode ldflags values: %+v", got)
	}

	bi.Main.Version = "(devel)"
	if got := fill(Info{Version: "dev"}, bi); got.Version != "dev" {
		t.Errorf("Version = %q, want dev for a devel build", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") || !strings.Contains(tmpl, "go1") {
		t.Errorf("Template() = %q", tmpl)
	}
}

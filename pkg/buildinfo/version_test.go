package buildinfo

import (
	"strings"
	"testing"
)

func TestGetReflectsStamp(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v0.3.0", "abc1234", "2025-01-02T03:04:05Z"

	got := Get()
	want := Info{Version: "v0.3.0", Commit: "abc1234", Date: "2025-01-02T03:04:05Z"}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "version v0.3.0 (abc1234, 2025-01-02T03:04:05Z)") {
		t.Errorf("Template() = %q", tmpl)
	}
}

func TestDefaults(t *testing.T) {
	if Get().Version == "" {
		t.Error("Version placeholder should not be empty")
	}
}

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// runCLI executes args against a file backend in dir and returns stdout.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	c.in = strings.NewReader(stdin)

	root := c.RootCommand()
	root.SetArgs(append([]string{"--data-dir", dir}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, "", args...)
	if err != nil {
		t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"serve", "node", "edge", "changes", "show", "clear", "export", "view", "store", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestNodeCommands(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "node", "add", "  Cache  ")
	if !strings.Contains(out, "Added node") || !strings.Contains(out, ": Cache") {
		t.Errorf("add output = %q", out)
	}

	out = mustRun(t, dir, "node", "ls")
	for _, want := range []string{"Client", "Database", "Cache"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	mustRun(t, dir, "node", "edit", "1", "--label", "Browser")
	if out := mustRun(t, dir, "node", "ls"); !strings.Contains(out, "Browser") || strings.Contains(out, "Client") {
		t.Errorf("edit not persisted:\n%s", out)
	}
}

func TestNodeRemoveNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "", "node", "rm", "2")
	if !derrors.Is(err, derrors.ErrCodeConfirmationRequired) {
		t.Fatalf("rm without --yes = %v, want CONFIRMATION_REQUIRED", err)
	}
	if out := mustRun(t, dir, "show"); !strings.Contains(out, "5 nodes") {
		t.Errorf("node removed without confirmation:\n%s", out)
	}

	out := mustRun(t, dir, "--yes", "node", "rm", "2")
	if !strings.Contains(out, "3 edges removed") {
		t.Errorf("rm output = %q", out)
	}
	out = mustRun(t, dir, "show")
	if !strings.Contains(out, "4 nodes") || !strings.Contains(out, "1 edges") {
		t.Errorf("show after rm:\n%s", out)
	}
}

func TestEdgeCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "", "edge", "add", "-s", "1", "-t", "1")
	if !derrors.Is(err, derrors.ErrCodeSelfLoop) {
		t.Errorf("self loop = %v, want SELF_LOOP", err)
	}
	_, err = runCLI(t, dir, "", "edge", "add", "-s", "1", "-t", "5", "--type", "zigzag")
	if !derrors.Is(err, derrors.ErrCodeInvalidEdgeType) {
		t.Errorf("bad type = %v, want INVALID_EDGE_TYPE", err)
	}

	out := mustRun(t, dir, "edge", "add", "-s", "1", "-t", "5", "--type", "bezier")
	if !strings.Contains(out, "1 → 5") {
		t.Errorf("add output = %q", out)
	}

	mustRun(t, dir, "edge", "edit", "e4-5", "--type", "straight")
	out = mustRun(t, dir, "edge", "ls")
	if !strings.Contains(out, "straight") || !strings.Contains(out, "bezier") {
		t.Errorf("edge ls:\n%s", out)
	}

	mustRun(t, dir, "-y", "edge", "rm", "e4-5")
	if out := mustRun(t, dir, "edge", "ls"); strings.Contains(out, "e4-5") {
		t.Errorf("edge not removed:\n%s", out)
	}
}

func TestClearAndShow(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "--yes", "clear")

	out := mustRun(t, dir, "show")
	if !strings.Contains(out, "0 nodes") || !strings.Contains(out, "stored") {
		t.Errorf("show after clear:\n%s", out)
	}
	if out := mustRun(t, dir, "node", "ls"); !strings.Contains(out, "No nodes") {
		t.Errorf("node ls after clear = %q", out)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "--namespace", "scratch", "--yes", "clear")

	if out := mustRun(t, dir, "--namespace", "scratch", "show"); !strings.Contains(out, "0 nodes") {
		t.Errorf("scratch namespace:\n%s", out)
	}
	if out := mustRun(t, dir, "show"); !strings.Contains(out, "5 nodes") {
		t.Errorf("default namespace affected by scratch:\n%s", out)
	}
}

func TestChangesApply(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, `[{"type":"remove","id":"4"}]`, "changes", "apply", "--nodes", "-")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Applied 1 change") {
		t.Errorf("apply output = %q", out)
	}
	// Node 4 had two edges.
	if !strings.Contains(out, "4 nodes") || !strings.Contains(out, "2 edges") {
		t.Errorf("stats after apply = %q", out)
	}

	_, err = runCLI(t, dir, "not json", "changes", "apply", "--edges", "-")
	if !derrors.Is(err, derrors.ErrCodeInvalidChange) {
		t.Errorf("bad input = %v, want INVALID_CHANGE", err)
	}
	if _, err := runCLI(t, dir, "", "changes", "apply"); err == nil {
		t.Error("apply without a file should fail")
	}
}

func TestExportDOT(t *testing.T) {
	out := mustRun(t, t.TempDir(), "export", "--format", "dot")
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("dot export = %q", out)
	}
	if !strings.Contains(out, `"1" -> "2"`) {
		t.Errorf("dot export missing edge 1 -> 2:\n%s", out)
	}
}

func TestViewFitAndStorePath(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "view", "fit", "--width", "800", "--height", "600")
	if !strings.Contains(out, "zoom") {
		t.Errorf("view fit output = %q", out)
	}
	if _, err := runCLI(t, dir, "", "view", "fit", "--width", "0"); !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Errorf("zero width = %v, want INVALID_INPUT", err)
	}

	out = mustRun(t, dir, "store", "path")
	for _, want := range []string{"file", dir, "diagramNodes, diagramEdges"} {
		if !strings.Contains(out, want) {
			t.Errorf("store path output missing %q:\n%s", want, out)
		}
	}
}

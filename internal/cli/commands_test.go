package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/wiregraph/pkg/errors"
	"github.com/matzehuels/wiregraph/pkg/geom"
	wio "github.com/matzehuels/wiregraph/pkg/io"
)

const divider = `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "flags": 0},
    {"id": 2, "x": 100, "y": 0, "flags": 0},
    {"id": 3, "x": 0, "y": 40, "flags": 0},
    {"id": 4, "x": 100, "y": 40, "flags": 0}
  ],
  "segments": [
    {"id": 1, "nodeA": 1, "nodeB": 2},
    {"id": 2, "nodeA": 3, "nodeB": 4}
  ],
  "components": [
    {"id": "R1", "origin": {"x": 0, "y": 0}, "pins": [{"id": "1", "offset": {"x": 0, "y": 0}}, {"id": "2", "offset": {"x": 0, "y": 40}}]},
    {"id": "V1", "origin": {"x": 100, "y": 0}, "pins": [{"id": "+", "offset": {"x": 0, "y": 0}}, {"id": "-", "offset": {"x": 0, "y": 40}}]},
    {"id": "GND", "origin": {"x": 100, "y": 40}, "ground": true, "pins": [{"id": "1", "offset": {"x": 0, "y": 0}}]}
  ]
}`

const chain = `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "flags": 0},
    {"id": 2, "x": 10, "y": 0, "flags": 0},
    {"id": 3, "x": 20, "y": 0, "flags": 0},
    {"id": 4, "x": 30, "y": 0, "flags": 0}
  ],
  "segments": [
    {"id": 1, "nodeA": 1, "nodeB": 2},
    {"id": 2, "nodeA": 2, "nodeB": 3},
    {"id": 3, "nodeA": 3, "nodeB": 4}
  ]
}`

// workspace holds a config file and inputs in a temp dir.
type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	body := "[cache]\ndisabled = true\n\n[storage]\ndir = '" + filepath.Join(dir, "docs") + "'\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return workspace{dir: dir, config: cfg}
}

func (w workspace) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and the workspace config.
func (w workspace) run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", w.config}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestNetsCommand(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "divider.json", divider)
	out := filepath.Join(w.dir, "divider.net")

	if err := w.run(t, "nets", in, "-o", out); err != nil {
		t.Fatalf("nets: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "N001 R1.1 V1.+\n0 GND.1 R1.2 V1.-\n"
	if string(data) != want {
		t.Errorf("netlist = %q, want %q", data, want)
	}
}

func TestNetsCommandMultipleFormats(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "divider.json", divider)
	base := filepath.Join(w.dir, "out")

	if err := w.run(t, "nets", in, "-f", "text,json,dot", "-o", base); err != nil {
		t.Fatalf("nets: %v", err)
	}
	for _, name := range []string{"out.net", "out.json", "out.dot"} {
		if _, err := os.Stat(filepath.Join(w.dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestNetsCommandErrors(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "divider.json", divider)
	bad := w.file(t, "bad.json", "{")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"nets", in, "-f", "gerber", "-o", filepath.Join(w.dir, "x")}},
		{"missing input", []string{"nets", filepath.Join(w.dir, "nope.json")}},
		{"malformed input", []string{"nets", bad, "-o", filepath.Join(w.dir, "bad.net")}},
		{"missing config", []string{"--config", filepath.Join(w.dir, "nope.toml"), "nets", in}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCleanupCommand(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "chain.json", chain)
	out := filepath.Join(w.dir, "clean.json")

	if err := w.run(t, "cleanup", in, "-o", out); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	doc, err := wio.ImportJSON(out, geom.Eps)
	if err != nil {
		t.Fatal(err)
	}
	if n, s := doc.Store.NodeCount(), doc.Store.SegmentCount(); n != 2 || s != 1 {
		t.Errorf("cleaned chain has %d nodes, %d segments; want 2, 1", n, s)
	}
}

func TestCleanupInPlace(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "chain.json", chain)

	if err := w.run(t, "cleanup", "-i", "-o", "x.json", in); err == nil {
		t.Error("--in-place with --output should fail")
	}
	if err := w.run(t, "cleanup", "-i", in); err != nil {
		t.Fatalf("cleanup -i: %v", err)
	}
	doc, err := wio.ImportJSON(in, geom.Eps)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Store.SegmentCount() != 1 {
		t.Errorf("segments = %d, want 1", doc.Store.SegmentCount())
	}
}

func TestStoreCommands(t *testing.T) {
	w := newWorkspace(t)
	in := w.file(t, "divider.json", divider)
	const id = "6f1c2a4e-3b7d-4c8e-9a0f-1d2e3f4a5b6c"

	if err := w.run(t, "store", "put", in, "--id", id); err != nil {
		t.Fatalf("store put: %v", err)
	}
	if err := w.run(t, "store", "list"); err != nil {
		t.Fatalf("store list: %v", err)
	}
	if err := w.run(t, "store", "nets", id); err != nil {
		t.Fatalf("store nets: %v", err)
	}

	out := filepath.Join(w.dir, "copy.json")
	if err := w.run(t, "store", "get", id, "-o", out); err != nil {
		t.Fatalf("store get: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if compact(t, got) != compact(t, []byte(divider)) {
		t.Error("stored snapshot differs from the input")
	}

	if err := w.run(t, "store", "rm", id); err != nil {
		t.Fatalf("store rm: %v", err)
	}
	err = w.run(t, "store", "get", id)
	if !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("get after delete: err = %v, want DOCUMENT_NOT_FOUND", err)
	}
}

func compact(t *testing.T, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestStorePutRejectsInvalid(t *testing.T) {
	w := newWorkspace(t)
	bad := w.file(t, "bad.json", `{"nodes": [{"id": 1}], "segments": [{"id": 1, "nodeA": 1, "nodeB": 9}]}`)

	if err := w.run(t, "store", "put", bad); err == nil {
		t.Error("expected an error for a dangling segment")
	}
	if err := w.run(t, "store", "get", "not-a-uuid"); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("err = %v, want INVALID_ID", err)
	}
}

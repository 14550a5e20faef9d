package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/keebgen/internal/app"
)

func TestBuildDefault(t *testing.T) {
	out, _, err := run(t, "build")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"col0", "col5", "middle", "-2..2", "side", "quad", "total", "39", "assembly graph valid"} {
		if !strings.Contains(out, want) {
			t.Errorf("build output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildScript(t *testing.T) {
	script := writeFile(t, "two.kbd", `
; two plain columns
(keyboard :fingers (list
  (finger :name "left")
  (finger :name "right")))
`)
	out, _, err := run(t, "build", "--script", script)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "col1") || strings.Contains(out, "col2") {
		t.Errorf("expected exactly two columns:\n%s", out)
	}
}

func TestBuildScriptErrors(t *testing.T) {
	script := writeFile(t, "bad.kbd", "(keyboard :spacing")
	_, stderr, err := run(t, "build", "--script", script)
	if err == nil {
		t.Fatal("expected an error for a broken script")
	}
	if !strings.Contains(err.Error(), "script error") {
		t.Errorf("unexpected error %v", err)
	}
	if !strings.Contains(stderr, script) {
		t.Errorf("script errors should name the file:\n%s", stderr)
	}
}

func TestBuildMissingConfig(t *testing.T) {
	_, _, err := run(t, "build", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestConfigFromTOML(t *testing.T) {
	path := writeFile(t, "kb.toml", "column_spacing = 21.5\n")
	out, _, err := run(t, "config", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "column_spacing = 21.5") {
		t.Errorf("effective config missing override:\n%s", out)
	}
	if !strings.Contains(out, `name = "pinky-outer"`) {
		t.Errorf("effective config should keep the default fingers:\n%s", out)
	}
}

func TestConfigFromScript(t *testing.T) {
	path := writeFile(t, "kb.kbd", `(keyboard :spacing 20 :column (column :radius 60))`)
	out, _, err := run(t, "config", "--script", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "column_spacing = 20.0") || !strings.Contains(out, "radius = 60.0") {
		t.Errorf("effective config missing script values:\n%s", out)
	}
}

func TestSourceFlagsExclusive(t *testing.T) {
	_, _, err := run(t, "config", "--config", "a.toml", "--script", "a.kbd")
	if err == nil {
		t.Fatal("expected --config and --script to be mutually exclusive")
	}
}

func TestGraphFormats(t *testing.T) {
	out, _, err := run(t, "graph")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph keyboard {") {
		t.Errorf("expected DOT output, got:\n%.80s", out)
	}
	if strings.Contains(out, `"socket"`) {
		t.Error("leaf nodes should be omitted by default")
	}

	out, _, err = run(t, "graph", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Root  string            `json:"root"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Root == "" || len(doc.Nodes) != 144 {
		t.Errorf("root %q, %d nodes; want 144 nodes", doc.Root, len(doc.Nodes))
	}

	if _, _, err := run(t, "graph", "--format", "png"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestGraphToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.dot")
	_, stderr, err := run(t, "graph", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph keyboard {") {
		t.Errorf("unexpected file contents: %.80s", data)
	}
	if !strings.Contains(stderr, "144 graph nodes") {
		t.Errorf("missing export summary:\n%s", stderr)
	}
}

func TestMeshLeaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	if _, _, err := run(t, "mesh", "--leaves", "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result app.EvalResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if want := 26*2 + 20 + 39; len(result.Meshes) != want {
		t.Errorf("expected %d leaf meshes, got %d", want, len(result.Meshes))
	}
	if result.Meshes[0].PartName != "col0/key-1/socket" {
		t.Errorf("first mesh = %q", result.Meshes[0].PartName)
	}
}

func TestSTLNeedsWriter(t *testing.T) {
	// The recording kernel has no STL writer.
	_, _, err := run(t, "stl", "-o", filepath.Join(t.TempDir(), "kb.stl"))
	if err == nil || !strings.Contains(err.Error(), "cannot write STL") {
		t.Errorf("expected STL writer error, got %v", err)
	}
}

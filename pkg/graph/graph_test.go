package graph

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel/kerneltest"
	"github.com/chazu/keebgen/pkg/keyboard"
)

func buildGraph(t *testing.T) *AssemblyGraph {
	t.Helper()
	kb, err := keyboard.Build(kerneltest.New(), config.Default(), keyboard.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return FromPart(kb)
}

func TestNodeID(t *testing.T) {
	a, b := NewNodeID("col0/key1"), NewNodeID("col0/key1")
	if a != b {
		t.Error("equal paths should give equal IDs")
	}
	if a == NewNodeID("col0/key2") {
		t.Error("different paths should give different IDs")
	}
	if a.IsZero() || !ZeroID.IsZero() {
		t.Error("IsZero mismatch")
	}
	if len(a.Short()) != 8 || !strings.HasPrefix(a.String(), a.Short()) {
		t.Errorf("Short() = %q, String() = %q", a.Short(), a.String())
	}

	text, err := a.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back NodeID
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != a {
		t.Error("text round trip changed the ID")
	}
	if err := back.UnmarshalText([]byte("abcd")); err == nil {
		t.Error("expected error for short ID")
	}
}

func TestFromKeyboard(t *testing.T) {
	g := buildGraph(t)

	// root + 6 columns + 39 seams + 26 keys (each with socket and cap)
	// + 20 in-column connectors.
	if want := 1 + 6 + 39 + 26*3 + 20; g.NodeCount() != want {
		t.Fatalf("expected %d nodes, got %d", want, g.NodeCount())
	}
	if len(g.Order) != g.NodeCount() {
		t.Errorf("order has %d entries, want %d", len(g.Order), g.NodeCount())
	}

	root := g.Get(g.Root)
	if root == nil || root.Kind != NodeKeyboard || root.Path != "" {
		t.Fatalf("unexpected root %+v", root)
	}

	counts := map[NodeKind]int{}
	for _, n := range g.Nodes {
		counts[n.Kind]++
	}
	want := map[NodeKind]int{
		NodeKeyboard: 1, NodeColumn: 6, NodeKey: 26, NodeSocket: 26, NodeCap: 26, NodeConnector: 59,
	}
	for k, c := range want {
		if counts[k] != c {
			t.Errorf("%s: got %d nodes, want %d", k, counts[k], c)
		}
	}

	col := g.MustLookup("col2")
	cd, ok := col.Data.(ColumnData)
	if !ok {
		t.Fatalf("expected ColumnData, got %T", col.Data)
	}
	if len(cd.Rows) != 5 || cd.Rows[0] != -2 {
		t.Errorf("col2 rows = %v", cd.Rows)
	}

	if n := g.Lookup("col2/key-2/socket"); n == nil || n.Kind != NodeSocket {
		t.Errorf("expected socket node, got %+v", n)
	}
	if g.Lookup("col9") != nil {
		t.Error("expected nil for missing path")
	}
}

func TestConnectorJoinsResolve(t *testing.T) {
	g := buildGraph(t)

	seam := g.MustLookup("connector0")
	d, ok := seam.Data.(ConnectorData)
	if !ok {
		t.Fatalf("expected ConnectorData, got %T", seam.Data)
	}
	if len(d.JoinIDs) != 2 {
		t.Fatalf("expected 2 joins, got %v", d.Joins)
	}
	if d.JoinIDs[0] != g.MustLookup("col0/key-1").ID || d.JoinIDs[1] != g.MustLookup("col1/key-1").ID {
		t.Errorf("seam joins resolved to the wrong keys: %v", d.Joins)
	}

	inner := g.MustLookup("col0/connector0to1")
	id, _ := inner.Data.(ConnectorData)
	if len(id.JoinIDs) != 2 || id.JoinIDs[0] != g.MustLookup("col0/key0").ID {
		t.Errorf("in-column joins = %v", id.Joins)
	}
}

func TestValidateBuiltKeyboard(t *testing.T) {
	g := buildGraph(t)
	if errs := Validate(g); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	res := ValidateAll(g)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestWriteJSON(t *testing.T) {
	g := buildGraph(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Root  string `json:"root"`
		Nodes []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
			Path string `json:"path"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Root != g.Root.String() {
		t.Errorf("root = %q, want %q", out.Root, g.Root.String())
	}
	if len(out.Nodes) != g.NodeCount() {
		t.Fatalf("got %d nodes, want %d", len(out.Nodes), g.NodeCount())
	}
	if out.Nodes[0].Kind != "keyboard" || out.Nodes[1].Path != "col0" || out.Nodes[1].Kind != "column" {
		t.Errorf("unexpected leading nodes: %+v", out.Nodes[:2])
	}
}

func TestToDOT(t *testing.T) {
	g := buildGraph(t)

	dot := ToDOT(g, DOTOptions{})
	if !strings.HasPrefix(dot, "digraph keyboard {") {
		t.Errorf("unexpected DOT header: %q", dot[:30])
	}
	if strings.Contains(dot, `"socket"`) {
		t.Error("sockets should be hidden without Leaves")
	}
	if strings.Contains(dot, "style=dashed") {
		t.Error("join edges should be hidden without Joins")
	}
	if !strings.Contains(dot, `label="col2\nrows -2..2"`) {
		t.Error("expected column label with row range")
	}

	full := ToDOT(g, DOTOptions{Joins: true, Leaves: true})
	if !strings.Contains(full, `label="socket"`) {
		t.Error("expected socket nodes with Leaves")
	}
	if got := strings.Count(full, "style=dashed"); got == 0 {
		t.Error("expected join edges with Joins")
	}
}

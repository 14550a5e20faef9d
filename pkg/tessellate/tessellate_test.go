package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/kernel/kerneltest"
	"github.com/chazu/keebgen/pkg/kernel/sdfx"
	"github.com/chazu/keebgen/pkg/keyboard"
	"github.com/chazu/keebgen/pkg/tessellate"
)

func abs(x float64) float64 { return math.Abs(x) }

// makeBlock creates a leaf box of the given size centered at (cx, cy, cz).
func makeBlock(t *testing.T, k kernel.Kernel, x, y, z, cx, cy, cz float64) *body.Leaf {
	t.Helper()
	a, err := anchor.Cuboid(anchor.Point{X: -x / 2, Y: -y / 2, Z: -z / 2}, anchor.Point{X: x / 2, Y: y / 2, Z: z / 2})
	if err != nil {
		t.Fatal(err)
	}
	l, err := body.NewLeaf(k, k.Box(x, y, z), a)
	if err != nil {
		t.Fatal(err)
	}
	l.Translate(cx, cy, cz)
	return l
}

func makeAssembly(t *testing.T, k kernel.Kernel, parts map[string]body.Part, order ...string) *body.Composite {
	t.Helper()
	c, err := body.NewComposite(k, anchor.Must([]anchor.Point{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1},
	}))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range order {
		if err := c.Add(name, parts[name]); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestSingleLeaf(t *testing.T) {
	k := &sdfx.SdfxKernel{MeshCells: 40}
	leaf := makeBlock(t, k, 20, 10, 4, 0, 0, 0)

	meshes, err := tessellate.Tessellate(leaf, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != tessellate.RootName {
		t.Errorf("expected PartName %q, got %q", tessellate.RootName, m.PartName)
	}
	if m.TriangleCount() == 0 {
		t.Error("mesh should have triangles")
	}
}

func TestPlacedParts(t *testing.T) {
	k := &sdfx.SdfxKernel{MeshCells: 40}
	asm := makeAssembly(t, k, map[string]body.Part{
		"left":  makeBlock(t, k, 10, 10, 4, 0, 0, 0),
		"right": makeBlock(t, k, 10, 10, 4, 40, 20, 10),
	}, "left", "right")

	meshes, err := tessellate.Tessellate(asm, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].PartName != "left" || meshes[1].PartName != "right" {
		t.Errorf("unexpected order: %q, %q", meshes[0].PartName, meshes[1].PartName)
	}

	// The right block was translated to (40, 20, 10); marching cubes is
	// approximate, so the centroid check is loose.
	m := meshes[1]
	var cx, cy, cz float64
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		cx += float64(m.Vertices[i*3])
		cy += float64(m.Vertices[i*3+1])
		cz += float64(m.Vertices[i*3+2])
	}
	cx /= float64(n)
	cy /= float64(n)
	cz /= float64(n)

	const tol = 3.0
	if abs(cx-40) > tol || abs(cy-20) > tol || abs(cz-10) > tol {
		t.Errorf("centroid = (%.1f, %.1f, %.1f), expected near (40, 20, 10)", cx, cy, cz)
	}
}

func TestEmptyPartsSkipped(t *testing.T) {
	k := kerneltest.New()
	inner := makeAssembly(t, k, nil)
	asm := makeAssembly(t, k, map[string]body.Part{
		"block": makeBlock(t, k, 2, 2, 2, 0, 0, 0),
		"empty": inner,
	}, "block", "empty")

	meshes, err := tessellate.Tessellate(asm, k)
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 || meshes[0].PartName != "block" {
		t.Fatalf("expected only the block mesh, got %d meshes", len(meshes))
	}
}

func TestNilRoot(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, kerneltest.New())
	if err != nil || meshes != nil {
		t.Errorf("expected nil, nil; got %v, %v", meshes, err)
	}
	m, err := tessellate.Merged(nil, kerneltest.New())
	if err != nil || m != nil {
		t.Errorf("expected nil, nil; got %v, %v", m, err)
	}
}

func TestKeyboardMeshes(t *testing.T) {
	k := kerneltest.New()
	kb, err := keyboard.Build(k, config.Default(), keyboard.Options{})
	if err != nil {
		t.Fatal(err)
	}

	meshes, err := tessellate.Tessellate(kb, k)
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != kb.Len() {
		t.Fatalf("expected %d meshes, got %d", kb.Len(), len(meshes))
	}
	for i, name := range kb.Names() {
		if meshes[i].PartName != name {
			t.Errorf("mesh %d: PartName %q, want %q", i, meshes[i].PartName, name)
		}
	}

	leaves, err := tessellate.Leaves(kb, k)
	if err != nil {
		t.Fatal(err)
	}
	// 26 keys with socket and cap, 20 in-column connectors, 39 seams.
	if want := 26*2 + 20 + 39; len(leaves) != want {
		t.Fatalf("expected %d leaf meshes, got %d", want, len(leaves))
	}
	if leaves[0].PartName != "col0/key-1/socket" {
		t.Errorf("first leaf = %q", leaves[0].PartName)
	}

	merged, err := tessellate.Merged(kb, k)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, m := range meshes {
		total += m.VertexCount()
	}
	if merged.VertexCount() != total {
		t.Errorf("merged mesh has %d vertices, parts have %d", merged.VertexCount(), total)
	}
	if merged.PartName != tessellate.RootName {
		t.Errorf("merged PartName = %q", merged.PartName)
	}
}

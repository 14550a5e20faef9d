//go:build manifold

package manifold

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/keebgen/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func assertBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := range 3 {
		if math.Abs(min[i]-wantMin[i]) > 1e-6 || math.Abs(max[i]-wantMax[i]) > 1e-6 {
			t.Fatalf("bounds = %v %v, want %v %v", min, max, wantMin, wantMax)
		}
	}
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	assertBounds(t, k.Box(10, 20, 30), [3]float64{-5, -10, -15}, [3]float64{5, 10, 15})
}

func TestSocketPlate(t *testing.T) {
	// A switch hole through a socket plate keeps the plate's bounds.
	k := mustNew(t)
	plate := k.Difference(k.Box(18, 18, 4), k.Box(14, 14, 8))
	assertBounds(t, plate, [3]float64{-9, -9, -2}, [3]float64{9, 9, 2})
}

func TestTranslate(t *testing.T) {
	k := mustNew(t)
	moved := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	assertBounds(t, moved, [3]float64{95, 195, 295}, [3]float64{105, 205, 305})
}

func TestRotateOrder(t *testing.T) {
	// X first, then Z: a long-x box rotated 90 about X keeps its x
	// extent, then 90 about Z moves it onto y.
	k := mustNew(t)
	s := k.Rotate(k.Box(100, 10, 4), 90, 0, 90)
	assertBounds(t, s, [3]float64{-2, -50, -5}, [3]float64{2, 50, 5})
}

func TestEmpty(t *testing.T) {
	k := mustNew(t)
	empty := k.Empty()
	if !kernel.IsEmpty(empty) {
		t.Fatal("Empty() should report an empty bounding box")
	}
	assertBounds(t, k.Union(empty, k.Box(2, 2, 2)), [3]float64{-1, -1, -1}, [3]float64{1, 1, 1})

	mesh, err := k.ToMesh(empty)
	if err != nil {
		t.Fatal(err)
	}
	if !mesh.IsEmpty() {
		t.Error("empty solid should produce an empty mesh")
	}
}

func TestHull(t *testing.T) {
	k := mustNew(t)
	var pts [][3]float64
	for _, x := range []float64{0, 4} {
		for _, y := range []float64{0, 2} {
			for _, z := range []float64{0, 1} {
				pts = append(pts, [3]float64{x, y, z})
			}
		}
	}
	pts = append(pts, [3]float64{2, 1, 0.5})

	s, err := k.Hull(pts)
	if err != nil {
		t.Fatalf("Hull() error = %v", err)
	}
	assertBounds(t, s, [3]float64{0, 0, 0}, [3]float64{4, 2, 1})
}

func TestHullDegenerate(t *testing.T) {
	k := mustNew(t)
	for _, pts := range [][][3]float64{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	} {
		if _, err := k.Hull(pts); !errors.Is(err, kernel.ErrDegenerateHull) {
			t.Errorf("Hull(%v) error = %v, want ErrDegenerateHull", pts, err)
		}
	}
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	mesh, err := k.ToMesh(k.Box(10, 10, 10))
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh.TriangleCount() < 12 {
		t.Errorf("triangle count = %d, want >= 12", mesh.TriangleCount())
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("normals length = %d, vertices length = %d", len(mesh.Normals), len(mesh.Vertices))
	}
}

func TestComputeFlatNormals(t *testing.T) {
	// One triangle in the z=0 plane, counter-clockwise from above.
	normals := computeFlatNormals([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
	for i := 0; i < 9; i += 3 {
		if normals[i] != 0 || normals[i+1] != 0 || normals[i+2] != 1 {
			t.Errorf("normal %d = %v, want +z", i/3, normals[i:i+3])
		}
	}
}

// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and boolean operations behind
// this interface so the part tree never touches a concrete CSG library.
package kernel

import "errors"

// ErrDegenerateHull is returned when a hull is requested over points that
// do not span a volume.
var ErrDegenerateHull = errors.New("kernel: hull points do not span a volume")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// All transforms are rigid and about the world origin. Rotate applies the
// X rotation first, then Y, then Z, matching anchor.RotatePoint.
type Kernel interface {
	// Primitives. Box and Cylinder are centered on the origin; the
	// cylinder axis is Z.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	// Hull returns the convex hull of points.
	Hull(points [][3]float64) (Solid, error)
	// Empty returns the identity for Union.
	Empty() Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// STLWriter is implemented by kernels that can export a solid directly to
// an STL file.
type STLWriter interface {
	WriteSTL(s Solid, path string) error
}

// IsEmpty reports whether s is empty, by its bounding box.
func IsEmpty(s Solid) bool {
	if s == nil {
		return true
	}
	min, max := s.BoundingBox()
	return min == max
}

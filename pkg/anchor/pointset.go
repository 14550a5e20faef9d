package anchor

import (
	"cmp"
	"slices"
)

// PointSet is an unordered set of points. Face queries return sets so that
// callers compose them by membership (Intersect, Union) and never depend
// on point order.
//
// Points are values: a PointSet taken from a Box is a snapshot and does not
// follow later transforms of that box.
type PointSet map[Point]struct{}

// NewPointSet returns a set holding the given points.
func NewPointSet(points ...Point) PointSet {
	s := make(PointSet, len(points))
	for _, p := range points {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s PointSet) Add(p Point) {
	s[p] = struct{}{}
}

// Contains reports whether p is a member.
func (s PointSet) Contains(p Point) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of points.
func (s PointSet) Len() int {
	return len(s)
}

// Intersect returns the points present in both s and o.
func (s PointSet) Intersect(o PointSet) PointSet {
	out := make(PointSet)
	for p := range s {
		if o.Contains(p) {
			out[p] = struct{}{}
		}
	}
	return out
}

// Union returns the points present in either s or o.
func (s PointSet) Union(o PointSet) PointSet {
	out := make(PointSet, len(s)+len(o))
	for p := range s {
		out[p] = struct{}{}
	}
	for p := range o {
		out[p] = struct{}{}
	}
	return out
}

// Clone returns an independent copy of s.
func (s PointSet) Clone() PointSet {
	out := make(PointSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

// Points returns the members sorted lexicographically by (x, y, z). The
// order only exists to make downstream output reproducible.
func (s PointSet) Points() []Point {
	out := make([]Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, compareAxes(0, 1, 2))
	return out
}

// Mean returns the centroid of the set. ok is false for an empty set.
func (s PointSet) Mean() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	var sum Point
	// Summing in sorted order keeps the result independent of map order.
	for _, p := range s.Points() {
		sum = Point{X: sum.X + p.X, Y: sum.Y + p.Y, Z: sum.Z + p.Z}
	}
	n := float64(len(s))
	return Point{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}, true
}

// axis returns coordinate i (0=x, 1=y, 2=z) of p.
func axis(p Point, i int) float64 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// compareAxes orders points by the given axes, most significant first.
func compareAxes(axes ...int) func(a, b Point) int {
	return func(a, b Point) int {
		for _, i := range axes {
			if c := cmp.Compare(axis(a, i), axis(b, i)); c != 0 {
				return c
			}
		}
		return 0
	}
}

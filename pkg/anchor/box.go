package anchor

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrCornerCount is returned when a box is built from anything other
	// than 8 points.
	ErrCornerCount = errors.New("anchor: a box needs exactly 8 corners")
	// ErrDuplicateCorner is returned when two corners coincide.
	ErrDuplicateCorner = errors.New("anchor: duplicate corner")
	// ErrDegenerate is returned for flat or non-finite corner sets: more
	// than 4 corners on one plane, or a NaN/Inf coordinate.
	ErrDegenerate = errors.New("anchor: degenerate box")
)

// coplanarTolerance is relative to the diagonal of the corners' bounds.
const coplanarTolerance = 1e-9

// Corner is a 3-bit corner code. Bit 0 selects the right (max x) half,
// bit 1 the front (max y) half, bit 2 the top (max z) half.
//
//	   6-------7
//	  /|      /|
//	 / |     / | Z (top)
//	4--|----5  |
//	|  2----|--3
//	| /     | / Y (front)
//	0-------1
//	    X (right)
type Corner uint8

const (
	LeftBackBottom Corner = iota
	RightBackBottom
	LeftFrontBottom
	RightFrontBottom
	LeftBackTop
	RightBackTop
	LeftFrontTop
	RightFrontTop
)

const (
	bitRight Corner = 1 << iota
	bitFront
	bitTop
)

// Side names one face of a box. Left/right, back/front and bottom/top are
// relative to a user sitting at the keyboard, with "front" facing the
// direction a column grows away from its home row.
type Side int

const (
	Left Side = iota
	Right
	Back
	Front
	Bottom
	Top
)

// Sides lists every side in declaration order.
var Sides = []Side{Left, Right, Back, Front, Bottom, Top}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Back:
		return "back"
	case Front:
		return "front"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide converts a side name to a Side.
func ParseSide(name string) (Side, error) {
	for _, s := range Sides {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("anchor: invalid side %q, expected left/right/back/front/bottom/top", name)
}

// mask returns the corner bit and wanted value selecting the side.
func (s Side) mask() (bit Corner, set bool) {
	switch s {
	case Left:
		return bitRight, false
	case Right:
		return bitRight, true
	case Back:
		return bitFront, false
	case Front:
		return bitFront, true
	case Bottom:
		return bitTop, false
	default:
		return bitTop, true
	}
}

// Box is an oriented 8-corner reference box. Corners are sorted into their
// canonical codes once, at construction; transforms move the same corners
// and never re-sort them.
type Box struct {
	corners [8]Point
}

// New sorts 8 points into a Box. It fails on a wrong point count,
// duplicate points, non-finite coordinates, or more than 4 coplanar points.
func New(points []Point) (*Box, error) {
	if len(points) != 8 {
		return nil, fmt.Errorf("%w: got %d", ErrCornerCount, len(points))
	}
	if err := checkCorners(points); err != nil {
		return nil, err
	}
	return &Box{corners: sortCorners(points)}, nil
}

// FromSet builds a Box from the members of s.
func FromSet(s PointSet) (*Box, error) {
	return New(s.Points())
}

// Must is like New but panics on error. Use it for constant inputs.
func Must(points []Point) *Box {
	b, err := New(points)
	if err != nil {
		panic(fmt.Sprintf("anchor.Must: %v", err))
	}
	return b
}

// Cuboid returns the axis-aligned box spanning min to max.
func Cuboid(min, max Point) (*Box, error) {
	pts := make([]Point, 0, 8)
	for c := Corner(0); c < 8; c++ {
		p := min
		if c&bitRight != 0 {
			p.X = max.X
		}
		if c&bitFront != 0 {
			p.Y = max.Y
		}
		if c&bitTop != 0 {
			p.Z = max.Z
		}
		pts = append(pts, p)
	}
	return New(pts)
}

// Bounds returns the axis-aligned box enclosing points, grown by pad on
// every side.
func Bounds(points []Point, pad float64) (*Box, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to bound", ErrCornerCount)
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = Point{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = Point{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	min = TranslatePoint(min, -pad, -pad, -pad)
	max = TranslatePoint(max, pad, pad, pad)
	return Cuboid(min, max)
}

// Translate moves every corner by (x, y, z).
func (b *Box) Translate(x, y, z float64) {
	for i := range b.corners {
		b.corners[i] = TranslatePoint(b.corners[i], x, y, z)
	}
}

// Rotate rotates every corner about the world origin, X then Y then Z.
// Rotate a centered box by translating it to the origin first.
func (b *Box) Rotate(x, y, z float64, unit AngleUnit) {
	if x == 0 && y == 0 && z == 0 {
		return
	}
	m := RotationMatrix(x, y, z, unit)
	for i := range b.corners {
		b.corners[i] = m.MulPosition(b.corners[i])
	}
}

// Side returns the 4 corners on side s.
func (b *Box) Side(s Side) PointSet {
	bit, set := s.mask()
	out := make(PointSet, 4)
	for c := Corner(0); c < 8; c++ {
		if (c&bit != 0) == set {
			out.Add(b.corners[c])
		}
	}
	return out
}

func (b *Box) Left() PointSet   { return b.Side(Left) }
func (b *Box) Right() PointSet  { return b.Side(Right) }
func (b *Box) Back() PointSet   { return b.Side(Back) }
func (b *Box) Front() PointSet  { return b.Side(Front) }
func (b *Box) Bottom() PointSet { return b.Side(Bottom) }
func (b *Box) Top() PointSet    { return b.Side(Top) }

// Edge returns the 2 corners shared by sides s and t. Opposite sides share
// no corners.
func (b *Box) Edge(s, t Side) PointSet {
	return b.Side(s).Intersect(b.Side(t))
}

// Corner returns the corner with code c.
func (b *Box) Corner(c Corner) Point {
	return b.corners[c&7]
}

// Corners returns a copy of all corners indexed by code.
func (b *Box) Corners() [8]Point {
	return b.corners
}

// Center returns the mean of the corners.
func (b *Box) Center() Point {
	var sum Point
	for _, p := range b.corners {
		sum = Point{X: sum.X + p.X, Y: sum.Y + p.Y, Z: sum.Z + p.Z}
	}
	return Point{X: sum.X / 8, Y: sum.Y / 8, Z: sum.Z / 8}
}

// Clone returns an independent copy of b.
func (b *Box) Clone() *Box {
	c := *b
	return &c
}

// sortCorners partitions the points into bottom/top halves by z, each half
// into back/front pairs by y, and each pair into left/right by x. Ties
// fall through to the remaining axes so the order is total on distinct
// points and therefore independent of input order.
func sortCorners(points []Point) [8]Point {
	s := slices.Clone(points)
	slices.SortFunc(s, compareAxes(2, 1, 0))

	var out [8]Point
	for zi, half := range [][]Point{s[:4], s[4:]} {
		slices.SortFunc(half, compareAxes(1, 0, 2))
		for yi, pair := range [][]Point{half[:2], half[2:]} {
			slices.SortFunc(pair, compareAxes(0, 1, 2))
			for xi, p := range pair {
				out[zi<<2|yi<<1|xi] = p
			}
		}
	}
	return out
}

// checkCorners rejects point sets that cannot span a hexahedron.
func checkCorners(points []Point) error {
	seen := make(PointSet, len(points))
	for _, p := range points {
		if !finite(p) {
			return fmt.Errorf("%w: non-finite corner %v", ErrDegenerate, p)
		}
		if seen.Contains(p) {
			return fmt.Errorf("%w: %v", ErrDuplicateCorner, p)
		}
		seen.Add(p)
	}

	scale := diagonal(points)
	if scale == 0 {
		return fmt.Errorf("%w: zero extent", ErrDegenerate)
	}
	tol := coplanarTolerance * scale

	// Any 5 of the 8 corners on one plane means the box is flat or folded.
	n := len(points)
	idx := make([]Point, 5)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						idx[0], idx[1], idx[2], idx[3], idx[4] = points[a], points[b], points[c], points[d], points[e]
						if coplanar(idx, tol, scale) {
							return fmt.Errorf("%w: more than 4 coplanar corners", ErrDegenerate)
						}
					}
				}
			}
		}
	}
	return nil
}

// diagonal returns the length of the bounds diagonal of points.
func diagonal(points []Point) float64 {
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = Point{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = Point{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return max.Sub(min).Length()
}

// coplanar reports whether all points lie within tol of one plane.
// Collinear inputs count as coplanar.
func coplanar(points []Point, tol, scale float64) bool {
	n := len(points)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				normal := points[j].Sub(points[i]).Cross(points[k].Sub(points[i]))
				l := normal.Length()
				if l <= tol*scale {
					continue
				}
				normal = normal.DivScalar(l)
				for _, p := range points {
					if math.Abs(normal.Dot(p.Sub(points[i]))) > tol {
						return false
					}
				}
				return true
			}
		}
	}
	return true
}

// Package anchor tracks the spatial reference frame of a part: an oriented
// 8-corner box carried through the same rigid transforms as the part's
// geometry, plus the point transforms and point sets used to query it.
package anchor

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is a position in model space (mm).
type Point = v3.Vec

// AngleUnit selects how rotation angles are interpreted.
type AngleUnit int

const (
	Degrees AngleUnit = iota
	Radians
)

func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "degrees"
	case Radians:
		return "radians"
	default:
		return "unknown"
	}
}

// ToRadians converts an angle expressed in u to radians.
func (u AngleUnit) ToRadians(a float64) float64 {
	if u == Degrees {
		return a * math.Pi / 180.0
	}
	return a
}

// ToDegrees converts an angle expressed in u to degrees.
func (u AngleUnit) ToDegrees(a float64) float64 {
	if u == Radians {
		return a * 180.0 / math.Pi
	}
	return a
}

// TranslatePoint returns p moved by (x, y, z).
func TranslatePoint(p Point, x, y, z float64) Point {
	return Point{X: p.X + x, Y: p.Y + y, Z: p.Z + z}
}

// RotationMatrix returns the rotation used by every transform in this
// module: about the world origin, X first, then Y, then Z.
func RotationMatrix(x, y, z float64, unit AngleUnit) sdf.M44 {
	xr, yr, zr := unit.ToRadians(x), unit.ToRadians(y), unit.ToRadians(z)
	return sdf.RotateZ(zr).Mul(sdf.RotateY(yr)).Mul(sdf.RotateX(xr))
}

// RotatePoint rotates p about the world origin by the Euler angles
// (x, y, z), applied in X, Y, Z order.
func RotatePoint(p Point, x, y, z float64, unit AngleUnit) Point {
	if x == 0 && y == 0 && z == 0 {
		return p
	}
	return RotationMatrix(x, y, z, unit).MulPosition(p)
}

// finite reports whether every coordinate of p is a real number.
func finite(p Point) bool {
	for _, c := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

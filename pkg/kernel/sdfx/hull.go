package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// hullEps is the relative tolerance for plane side tests.
const hullEps = 1e-9

type plane struct {
	n v3.Vec  // outward unit normal
	d float64 // n·p for points on the plane
}

// hullSDF3 is the convex hull of a point cloud as the intersection of its
// supporting half-spaces. Outside the hull Evaluate returns the largest
// plane distance, which never overestimates the true distance.
type hullSDF3 struct {
	planes []plane
	bb     sdf.Box3
}

var _ sdf.SDF3 = (*hullSDF3)(nil)

func newHull(points [][3]float64) (*hullSDF3, error) {
	pts := dedupe(points)
	if len(pts) < 4 {
		return nil, fmt.Errorf("%w: %d distinct points", kernel.ErrDegenerateHull, len(pts))
	}

	bb := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb.Min = bb.Min.Min(p)
		bb.Max = bb.Max.Max(p)
	}
	scale := bb.Max.Sub(bb.Min).Length()
	tol := hullEps * scale

	var planes []plane
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				normal := pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i]))
				l := normal.Length()
				if l <= tol*scale {
					continue
				}
				normal = normal.DivScalar(l)
				d := normal.Dot(pts[i])
				above, below := false, false
				for _, p := range pts {
					switch dist := normal.Dot(p) - d; {
					case dist > tol:
						above = true
					case dist < -tol:
						below = true
					}
				}
				switch {
				case above && below:
					continue
				case above:
					normal, d = normal.Neg(), -d
				case !below:
					// Every point on one plane.
					return nil, fmt.Errorf("%w: points are coplanar", kernel.ErrDegenerateHull)
				}
				planes = addPlane(planes, plane{n: normal, d: d}, tol)
			}
		}
	}
	if len(planes) < 4 {
		return nil, fmt.Errorf("%w: %d faces", kernel.ErrDegenerateHull, len(planes))
	}
	return &hullSDF3{planes: planes, bb: bb}, nil
}

// Evaluate returns the signed distance bound from p to the hull.
func (h *hullSDF3) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, pl := range h.planes {
		d = math.Max(d, pl.n.Dot(p)-pl.d)
	}
	return d
}

// BoundingBox returns the bounds of the hull points.
func (h *hullSDF3) BoundingBox() sdf.Box3 {
	return h.bb
}

func addPlane(planes []plane, p plane, tol float64) []plane {
	for _, q := range planes {
		if q.n.Sub(p.n).Length() < 1e-9 && math.Abs(q.d-p.d) <= tol {
			return planes
		}
	}
	return append(planes, p)
}

func dedupe(points [][3]float64) []v3.Vec {
	seen := make(map[[3]float64]bool, len(points))
	out := make([]v3.Vec, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, v3.Vec{X: p[0], Y: p[1], Z: p[2]})
	}
	return out
}

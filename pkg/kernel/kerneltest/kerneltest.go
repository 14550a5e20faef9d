// Package kerneltest provides a recording kernel.Kernel for tests that need
// to follow transforms through a part tree without tessellating anything.
package kerneltest

import (
	"fmt"
	"math"

	"github.com/chazu/keebgen/pkg/kernel"
)

// Op is one recorded operation applied to a Solid.
type Op struct {
	Kind string // "translate" or "rotate"
	X    float64
	Y    float64
	Z    float64
}

// Solid is a box-shaped stand-in whose corner points are transformed
// exactly like real geometry would be. Unions keep the corners of every
// operand.
type Solid struct {
	Label   string
	Points  [][3]float64
	History []Op
}

// BoundingBox returns the bounds of the tracked points.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	if len(s.Points) == 0 {
		return min, max
	}
	min, max = s.Points[0], s.Points[0]
	for _, p := range s.Points[1:] {
		for i := range 3 {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}
	return min, max
}

// Kernel records every call it receives.
type Kernel struct {
	Calls map[string]int
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns an empty recording kernel.
func New() *Kernel {
	return &Kernel{Calls: make(map[string]int)}
}

func (k *Kernel) record(name string) {
	if k.Calls == nil {
		k.Calls = make(map[string]int)
	}
	k.Calls[name]++
}

func unwrap(s kernel.Solid) *Solid {
	st, ok := s.(*Solid)
	if !ok {
		panic(fmt.Sprintf("kerneltest: foreign solid %T", s))
	}
	return st
}

func cuboid(label string, x, y, z float64) *Solid {
	s := &Solid{Label: label}
	for _, dx := range []float64{-x / 2, x / 2} {
		for _, dy := range []float64{-y / 2, y / 2} {
			for _, dz := range []float64{-z / 2, z / 2} {
				s.Points = append(s.Points, [3]float64{dx, dy, dz})
			}
		}
	}
	return s
}

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	k.record("box")
	return cuboid("box", x, y, z)
}

func (k *Kernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	k.record("cylinder")
	return cuboid("cylinder", 2*radius, 2*radius, height)
}

func (k *Kernel) Hull(points [][3]float64) (kernel.Solid, error) {
	k.record("hull")
	if len(points) < 4 {
		return nil, kernel.ErrDegenerateHull
	}
	return &Solid{Label: "hull", Points: append([][3]float64(nil), points...)}, nil
}

func (k *Kernel) Empty() kernel.Solid {
	k.record("empty")
	return &Solid{Label: "empty"}
}

func (k *Kernel) combine(label string, a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	out := &Solid{Label: label}
	out.Points = append(out.Points, sa.Points...)
	out.Points = append(out.Points, sb.Points...)
	return out
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	k.record("union")
	return k.combine("union", a, b)
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	k.record("difference")
	sa := unwrap(a)
	return &Solid{Label: "difference", Points: append([][3]float64(nil), sa.Points...)}
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	k.record("intersection")
	return k.combine("intersection", a, b)
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.record("translate")
	in := unwrap(s)
	out := &Solid{Label: in.Label, History: append(append([]Op(nil), in.History...), Op{"translate", x, y, z})}
	for _, p := range in.Points {
		out.Points = append(out.Points, [3]float64{p[0] + x, p[1] + y, p[2] + z})
	}
	return out
}

// Rotate applies X, then Y, then Z rotations in degrees about the origin.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.record("rotate")
	in := unwrap(s)
	out := &Solid{Label: in.Label, History: append(append([]Op(nil), in.History...), Op{"rotate", x, y, z})}
	for _, p := range in.Points {
		out.Points = append(out.Points, rotate(p, x, y, z))
	}
	return out
}

func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.record("mesh")
	in := unwrap(s)
	m := &kernel.Mesh{PartName: in.Label}
	for _, p := range in.Points {
		m.Vertices = append(m.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
		m.Normals = append(m.Normals, 0, 0, 1)
	}
	return m, nil
}

func rotate(p [3]float64, x, y, z float64) [3]float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	if x != 0 {
		s, c := math.Sincos(rad(x))
		p = [3]float64{p[0], p[1]*c - p[2]*s, p[1]*s + p[2]*c}
	}
	if y != 0 {
		s, c := math.Sincos(rad(y))
		p = [3]float64{p[0]*c + p[2]*s, p[1], -p[0]*s + p[2]*c}
	}
	if z != 0 {
		s, c := math.Sincos(rad(z))
		p = [3]float64{p[0]*c - p[1]*s, p[0]*s + p[1]*c, p[2]}
	}
	return p
}

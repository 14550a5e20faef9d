package parts

import (
	"fmt"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
)

// Profile selects one of the four sculpted keycap rows. Row 1 is the
// farthest from the user, row 3 is the home row.
type Profile int

const (
	MinProfile Profile = 1
	MaxProfile Profile = 4
)

// ClampProfile limits p to the available rows.
func ClampProfile(p int) Profile {
	switch {
	case p < int(MinProfile):
		return MinProfile
	case p > int(MaxProfile):
		return MaxProfile
	}
	return Profile(p)
}

// Valid reports whether p names a row.
func (p Profile) Valid() bool {
	return p >= MinProfile && p <= MaxProfile
}

type capShape struct {
	height float64 // cap height above its base
	tilt   float64 // top face tilt about x, degrees
}

var capShapes = map[Profile]capShape{
	1: {height: 9.8, tilt: -12},
	2: {height: 8.6, tilt: -6},
	3: {height: 8.0, tilt: 0},
	4: {height: 8.9, tilt: 8},
}

// topInset is how much narrower the cap's top face is than its base.
const topInset = 5.0

// Cap builds the keycap for profile p as a hull between its base outline,
// cfg.Clearance above z = 0, and a smaller, tilted top face.
func Cap(k kernel.Kernel, cfg config.Key, p Profile) (*body.Leaf, error) {
	shape, ok := capShapes[p]
	if !ok {
		return nil, fmt.Errorf("parts: unknown cap profile %d", p)
	}

	base := cfg.Clearance
	top := base + shape.height
	hw, hd := cfg.Width/2, cfg.Depth/2
	tw, td := hw-topInset/2, hd-topInset/2

	var pts []anchor.Point
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			pts = append(pts, anchor.Point{X: x * hw, Y: y * hd, Z: base})
			// Tilt the top outline about its own center line.
			tp := anchor.RotatePoint(anchor.Point{X: x * tw, Y: y * td}, shape.tilt, 0, 0, anchor.Degrees)
			pts = append(pts, anchor.TranslatePoint(tp, 0, 0, top))
		}
	}

	raw := make([][3]float64, len(pts))
	for i, p := range pts {
		raw[i] = [3]float64{p.X, p.Y, p.Z}
	}
	solid, err := k.Hull(raw)
	if err != nil {
		return nil, fmt.Errorf("parts: cap profile %d: %w", p, err)
	}
	anchors, err := anchor.Bounds(pts, 0)
	if err != nil {
		return nil, fmt.Errorf("parts: cap profile %d anchors: %w", p, err)
	}
	return body.NewLeaf(k, solid, anchors)
}

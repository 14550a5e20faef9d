// Package parts builds the concrete bodies the column and keyboard
// algorithms place: switch sockets, keycaps by row profile, face-aligned
// keys and hulled web connectors.
package parts

import (
	"fmt"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
)

// Socket builds a switch plate with its top face at z = 0, centered in x
// and y, with a square switch hole through it. The anchors are the plate's
// outer corners.
func Socket(k kernel.Kernel, cfg config.Socket) (*body.Leaf, error) {
	w, d, t := cfg.Width, cfg.Depth, cfg.Thickness
	plate := k.Translate(k.Box(w, d, t), 0, 0, -t/2)
	hole := k.Translate(k.Box(cfg.Hole, cfg.Hole, 2*t), 0, 0, -t/2)

	anchors, err := anchor.Cuboid(
		anchor.Point{X: -w / 2, Y: -d / 2, Z: -t},
		anchor.Point{X: w / 2, Y: d / 2, Z: 0},
	)
	if err != nil {
		return nil, fmt.Errorf("parts: socket anchors: %w", err)
	}
	return body.NewLeaf(k, k.Difference(plate, hole), anchors)
}

package parts

import (
	"errors"
	"fmt"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/kernel"
)

var (
	// ErrPointSetCount is returned for fewer than 2 or more than 4 sets.
	ErrPointSetCount = errors.New("parts: a connector bridges 2 to 4 point sets")
	// ErrEmptyPointSet is returned when any bridged set has no points.
	ErrEmptyPointSet = errors.New("parts: empty connector point set")
)

// Connector is web material bridging anchor points of other parts: the
// convex hull of a small cubic post at every point.
type Connector struct {
	*body.Leaf

	// Arity is the size of each bridged set, in argument order.
	Arity []int
	// Joins names the bridged parts, when the caller records them.
	Joins []string
}

// NewConnector hulls posts of edge postSize placed at every point of sets.
// The sets are read once; later changes to the parts they came from do not
// affect the connector.
func NewConnector(k kernel.Kernel, postSize float64, sets ...anchor.PointSet) (*Connector, error) {
	if len(sets) < 2 || len(sets) > 4 {
		return nil, fmt.Errorf("%w: got %d", ErrPointSetCount, len(sets))
	}
	if !(postSize > 0) {
		return nil, fmt.Errorf("parts: connector post size must be positive, got %v", postSize)
	}

	h := postSize / 2
	arity := make([]int, len(sets))
	var centers []anchor.Point
	for i, s := range sets {
		if s.Len() == 0 {
			return nil, fmt.Errorf("%w: set %d", ErrEmptyPointSet, i)
		}
		arity[i] = s.Len()
		centers = append(centers, s.Points()...)
	}

	posts := make([][3]float64, 0, 8*len(centers))
	for _, c := range centers {
		for _, dx := range []float64{-h, h} {
			for _, dy := range []float64{-h, h} {
				for _, dz := range []float64{-h, h} {
					posts = append(posts, [3]float64{c.X + dx, c.Y + dy, c.Z + dz})
				}
			}
		}
	}

	solid, err := k.Hull(posts)
	if err != nil {
		return nil, fmt.Errorf("parts: connector hull: %w", err)
	}
	anchors, err := anchor.Bounds(centers, h)
	if err != nil {
		return nil, fmt.Errorf("parts: connector anchors: %w", err)
	}
	leaf, err := body.NewLeaf(k, solid, anchors)
	if err != nil {
		return nil, err
	}
	return &Connector{Leaf: leaf, Arity: arity}, nil
}

// PointCount returns the number of bridged points.
func (c *Connector) PointCount() int {
	n := 0
	for _, a := range c.Arity {
		n += a
	}
	return n
}

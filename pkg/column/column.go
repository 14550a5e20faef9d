// Package column places a run of keys along the inside of a virtual
// cylinder so that adjacent key tops keep a constant gap, then bridges
// neighbouring sockets with web connectors.
//
// Keys are named by their signed row offset from the home key ("key-1",
// "key0", "key2"); the keyboard stitcher aligns columns by these names.
package column

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/config"
	"github.com/chazu/keebgen/pkg/kernel"
	"github.com/chazu/keebgen/pkg/parts"
)

var (
	// ErrNoKeys is returned for a column with fewer than one key.
	ErrNoKeys = errors.New("column: num_keys must be at least 1")
	// ErrZeroRadius is returned when the curvature radius is zero or not
	// finite.
	ErrZeroRadius = errors.New("column: radius must be finite and non-zero")
	// ErrNumeric is returned when the wrap angle derivation produces a
	// non-finite value.
	ErrNumeric = errors.New("column: non-finite wrap angle")
)

// DefaultPostSize is used when Options.PostSize is zero.
const DefaultPostSize = 1.0

// Options tunes a column build.
type Options struct {
	// PostSize is the web post edge length of intra-column connectors.
	PostSize float64
	// Logger receives debug records per placed key. Nil is silent.
	Logger *log.Logger
}

// Placement records where one key ended up.
type Placement struct {
	Row     int
	Name    string
	Profile parts.Profile
	// Step is the angular pitch between adjacent keys, in radians.
	Step float64
	// Angle is Step × -Row, in radians. The key is rotated about X by
	// -Angle. Zero for the home key.
	Angle float64
}

// Column is the assembled column: keys and their connectors.
type Column struct {
	*body.Composite

	placements []Placement
	connectors []string
}

// KeyName returns the part name of the key at row offset row.
func KeyName(row int) string {
	return fmt.Sprintf("key%d", row)
}

// ConnectorName returns the part name of the connector between key
// indices i-1 and i.
func ConnectorName(i int) string {
	return fmt.Sprintf("connector%dto%d", i-1, i)
}

// ProfileFor returns the row profile of key index i in a column whose home
// key is at index home.
func ProfileFor(i, home int) parts.Profile {
	return parts.ClampProfile(4 - i + (home - 1))
}

// WrapStep returns the angle between adjacent keys on a cylinder of
// radius r that leaves gap g between key top edges, where yFront and yBack
// are the socket's top-edge offsets from its center.
func WrapStep(yFront, yBack, r, g float64) float64 {
	return math.Atan(math.Abs(yFront)/r) + math.Atan(math.Abs(yBack)/r) + 2*math.Atan(g/(2*r))
}

type namedPart struct {
	name string
	part body.Part
}

// Build places cfg.NumKeys keys from keys and joins them.
func Build(k kernel.Kernel, keys parts.KeyBuilder, cfg config.Column, opts Options) (*Column, error) {
	if cfg.NumKeys < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoKeys, cfg.NumKeys)
	}
	if cfg.Radius == 0 || math.IsNaN(cfg.Radius) || math.IsInf(cfg.Radius, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrZeroRadius, cfg.Radius)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	post := opts.PostSize
	if post == 0 {
		post = DefaultPostSize
	}

	radius := cfg.Radius
	col := &Column{}
	var (
		ordered              []namedPart
		prevFront            anchor.PointSet
		prevName             string
		firstBack, lastFront anchor.PointSet
	)

	for i := 0; i < cfg.NumKeys; i++ {
		profile := ProfileFor(i, cfg.HomeIndex)
		row := i - cfg.HomeIndex
		name := KeyName(row)

		key, err := keys.BuildKey(profile)
		if err != nil {
			return nil, fmt.Errorf("column: key %s: %w", name, err)
		}
		key.Rotate(0, cfg.KeySideLean, 0, anchor.Degrees)
		key.Translate(0, 0, -radius)

		socket, ok := key.PartAnchors(parts.SocketPart)
		if !ok {
			return nil, fmt.Errorf("column: key %s has no %q part", name, parts.SocketPart)
		}
		front, okF := socket.Edge(anchor.Top, anchor.Front).Mean()
		back, okB := socket.Edge(anchor.Top, anchor.Back).Mean()
		if !okF || !okB {
			return nil, fmt.Errorf("column: key %s has no top edges", name)
		}

		step := WrapStep(front.Y, back.Y, radius, cfg.KeyGap)
		angle := step * float64(-row)
		if math.IsNaN(angle) || math.IsInf(angle, 0) {
			return nil, fmt.Errorf("%w: key %s step %v", ErrNumeric, name, step)
		}
		key.Rotate(-angle, 0, 0, anchor.Radians)
		key.Translate(0, 0, radius)

		ordered = append(ordered, namedPart{name, key})
		col.placements = append(col.placements, Placement{
			Row: row, Name: name, Profile: profile, Step: step, Angle: angle,
		})
		logger.Debug("placed key", "key", name, "profile", int(profile),
			"angle", anchor.Radians.ToDegrees(angle))

		if prevFront != nil {
			conn, err := parts.NewConnector(k, post, socket.Back(), prevFront)
			if err != nil {
				return nil, fmt.Errorf("column: connecting %s to %s: %w", prevName, name, err)
			}
			conn.Joins = []string{name, prevName}
			cname := ConnectorName(i)
			ordered = append(ordered, namedPart{cname, conn})
			col.connectors = append(col.connectors, cname)
		}

		if firstBack == nil {
			firstBack = socket.Back()
		}
		lastFront = socket.Front()
		prevFront = lastFront
		prevName = name
	}

	anchors, err := anchor.FromSet(firstBack.Union(lastFront))
	if err != nil {
		return nil, fmt.Errorf("column: anchors: %w", err)
	}
	comp, err := body.NewComposite(k, anchors)
	if err != nil {
		return nil, err
	}
	for _, np := range ordered {
		if err := comp.Add(np.name, np.part); err != nil {
			return nil, err
		}
	}
	comp.Rotate(cfg.HomeTiltbackAngle, 0, 0, anchor.Degrees)
	col.Composite = comp
	return col, nil
}

// Placements returns one record per key, in build order.
func (c *Column) Placements() []Placement {
	return append([]Placement(nil), c.placements...)
}

// Rows returns the row offsets present, ascending.
func (c *Column) Rows() []int {
	rows := make([]int, len(c.placements))
	for i, p := range c.placements {
		rows[i] = p.Row
	}
	return rows
}

// Connectors returns the intra-column connector names in build order.
func (c *Column) Connectors() []string {
	return append([]string(nil), c.connectors...)
}

// Key returns the key at row offset row.
func (c *Column) Key(row int) (body.Assembly, bool) {
	p, ok := c.Part(KeyName(row))
	if !ok {
		return nil, false
	}
	a, ok := p.(body.Assembly)
	return a, ok
}

// SocketAnchors returns the socket anchors of the key at row offset row.
// ok is false when the column has no such row.
func (c *Column) SocketAnchors(row int) (*anchor.Box, bool) {
	key, ok := c.Key(row)
	if !ok {
		return nil, false
	}
	return key.PartAnchors(parts.SocketPart)
}

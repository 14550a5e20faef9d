// Package body is the rigid-part tree: leaf parts pair one kernel solid with
// one anchor box, and composites hold named child parts. Every transform is
// applied to geometry and anchors together so they never drift apart.
package body

import (
	"errors"
	"fmt"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/kernel"
)

// ErrDuplicatePart is returned when a composite already holds a part with
// the requested name.
var ErrDuplicatePart = errors.New("body: duplicate part name")

// Part is anything that can be placed in an assembly.
type Part interface {
	// Solid returns the part's geometry. For composites this is the union
	// of every child.
	Solid() kernel.Solid
	// Translate moves the part by (x, y, z).
	Translate(x, y, z float64)
	// Rotate rotates the part about the world origin, X then Y then Z.
	Rotate(x, y, z float64, unit anchor.AngleUnit)
	// Anchors returns the part's own anchor box.
	Anchors() *anchor.Box
}

// Assembly is a Part with named children.
type Assembly interface {
	Part
	Part(name string) (Part, bool)
	PartAnchors(name string) (*anchor.Box, bool)
	Names() []string
}

// Leaf is a single solid with its anchor box.
type Leaf struct {
	k       kernel.Kernel
	solid   kernel.Solid
	anchors *anchor.Box
}

// NewLeaf pairs a solid with its anchors. Both must be non-nil.
func NewLeaf(k kernel.Kernel, solid kernel.Solid, anchors *anchor.Box) (*Leaf, error) {
	if k == nil || solid == nil || anchors == nil {
		return nil, fmt.Errorf("body: leaf needs a kernel, a solid and anchors")
	}
	return &Leaf{k: k, solid: solid, anchors: anchors}, nil
}

// Solid returns the leaf's geometry.
func (l *Leaf) Solid() kernel.Solid { return l.solid }

// Anchors returns the leaf's anchor box.
func (l *Leaf) Anchors() *anchor.Box { return l.anchors }

// Translate moves the solid and its anchors by (x, y, z).
func (l *Leaf) Translate(x, y, z float64) {
	l.solid = l.k.Translate(l.solid, x, y, z)
	l.anchors.Translate(x, y, z)
}

// Rotate rotates the solid and its anchors about the world origin.
func (l *Leaf) Rotate(x, y, z float64, unit anchor.AngleUnit) {
	if x == 0 && y == 0 && z == 0 {
		return
	}
	l.solid = l.k.Rotate(l.solid, unit.ToDegrees(x), unit.ToDegrees(y), unit.ToDegrees(z))
	l.anchors.Rotate(x, y, z, unit)
}

// Composite is an ordered collection of named parts sharing one transform.
type Composite struct {
	k       kernel.Kernel
	anchors *anchor.Box
	order   []string
	parts   map[string]Part
}

// NewComposite returns an empty composite with its own anchor box.
func NewComposite(k kernel.Kernel, anchors *anchor.Box) (*Composite, error) {
	if k == nil || anchors == nil {
		return nil, fmt.Errorf("body: composite needs a kernel and anchors")
	}
	return &Composite{k: k, anchors: anchors, parts: make(map[string]Part)}, nil
}

// Add appends a named part. Names are unique within a composite.
func (c *Composite) Add(name string, p Part) error {
	if p == nil {
		return fmt.Errorf("body: nil part %q", name)
	}
	if _, ok := c.parts[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePart, name)
	}
	c.order = append(c.order, name)
	c.parts[name] = p
	return nil
}

// SetAnchors replaces the composite's own anchor box. Child anchors are
// unaffected.
func (c *Composite) SetAnchors(b *anchor.Box) {
	if b != nil {
		c.anchors = b
	}
}

// Part looks up a direct child by name.
func (c *Composite) Part(name string) (Part, bool) {
	p, ok := c.parts[name]
	return p, ok
}

// PartAnchors returns the anchors of the named child.
func (c *Composite) PartAnchors(name string) (*anchor.Box, bool) {
	p, ok := c.parts[name]
	if !ok {
		return nil, false
	}
	return p.Anchors(), true
}

// Names returns child names in insertion order.
func (c *Composite) Names() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of direct children.
func (c *Composite) Len() int { return len(c.order) }

// Anchors returns the composite's own anchor box.
func (c *Composite) Anchors() *anchor.Box { return c.anchors }

// Translate moves the composite's anchors and every child.
func (c *Composite) Translate(x, y, z float64) {
	c.anchors.Translate(x, y, z)
	for _, name := range c.order {
		c.parts[name].Translate(x, y, z)
	}
}

// Rotate rotates the composite's anchors and every child about the world
// origin.
func (c *Composite) Rotate(x, y, z float64, unit anchor.AngleUnit) {
	if x == 0 && y == 0 && z == 0 {
		return
	}
	c.anchors.Rotate(x, y, z, unit)
	for _, name := range c.order {
		c.parts[name].Rotate(x, y, z, unit)
	}
}

// Solid folds every child's geometry into one union, in insertion order.
func (c *Composite) Solid() kernel.Solid {
	s := c.k.Empty()
	for _, name := range c.order {
		s = c.k.Union(s, c.parts[name].Solid())
	}
	return s
}

// Lookup resolves a path of child names, e.g. ("col0", "key-1", "socket"),
// through nested assemblies.
func Lookup(p Part, path ...string) (Part, bool) {
	for _, name := range path {
		a, ok := p.(Assembly)
		if !ok {
			return nil, false
		}
		if p, ok = a.Part(name); !ok {
			return nil, false
		}
	}
	return p, true
}

// Walk visits p and every descendant depth first, children in insertion
// order. path holds the names from the root, empty for the root itself.
func Walk(p Part, fn func(path []string, p Part) error) error {
	return walk(nil, p, fn)
}

func walk(path []string, p Part, fn func([]string, Part) error) error {
	if err := fn(path, p); err != nil {
		return err
	}
	a, ok := p.(Assembly)
	if !ok {
		return nil
	}
	for _, name := range a.Names() {
		child, _ := a.Part(name)
		next := append(append([]string(nil), path...), name)
		if err := walk(next, child, fn); err != nil {
			return err
		}
	}
	return nil
}

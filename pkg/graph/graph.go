package graph

import (
	"fmt"
	"path"

	"github.com/chazu/keebgen/pkg/anchor"
	"github.com/chazu/keebgen/pkg/body"
	"github.com/chazu/keebgen/pkg/parts"
)

// AssemblyGraph is the node graph of one built assembly. It is never
// mutated after FromPart returns.
type AssemblyGraph struct {
	Nodes     map[NodeID]*Node
	Root      NodeID
	PathIndex map[string]NodeID
	// Order lists every node in depth-first build order.
	Order []NodeID
}

// New creates an empty AssemblyGraph.
func New() *AssemblyGraph {
	return &AssemblyGraph{
		Nodes:     make(map[NodeID]*Node),
		PathIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *AssemblyGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	g.PathIndex[n.Path] = n.ID
	g.Order = append(g.Order, n.ID)
}

type rowed interface{ Rows() []int }

type columned interface{ Columns() []string }

// FromPart derives the graph of the tree rooted at root. The root has the
// empty path; every other node's path is its parent's path joined with
// its name, so "col0/key1/socket".
func FromPart(root body.Part) *AssemblyGraph {
	g := New()
	g.Root = g.add("", "", root)
	return g
}

func (g *AssemblyGraph) add(p, name string, part body.Part) NodeID {
	n := &Node{ID: NewNodeID(p), Name: name, Path: p}
	n.Kind = classify(name, part)
	if n.Name == "" {
		n.Name = n.Kind.String()
	}
	anchors := anchorData(part.Anchors())

	switch v := part.(type) {
	case *parts.Connector:
		d := ConnectorData{AnchorData: anchors, Arity: append([]int(nil), v.Arity...)}
		parent := path.Dir(p)
		if parent == "." {
			parent = ""
		}
		for _, j := range v.Joins {
			d.Joins = append(d.Joins, j)
			d.JoinIDs = append(d.JoinIDs, NewNodeID(path.Join(parent, j)))
		}
		n.Data = d
	case rowed:
		n.Data = ColumnData{AnchorData: anchors, Rows: v.Rows()}
	default:
		n.Data = anchors
	}
	g.AddNode(n)

	if asm, ok := part.(body.Assembly); ok {
		for _, child := range asm.Names() {
			c, _ := asm.Part(child)
			n.Children = append(n.Children, g.add(path.Join(p, child), child, c))
		}
	}
	return n.ID
}

func classify(name string, p body.Part) NodeKind {
	switch v := p.(type) {
	case *parts.Connector:
		return NodeConnector
	case columned:
		return NodeKeyboard
	case rowed:
		return NodeColumn
	case body.Assembly:
		_, s := v.Part(parts.SocketPart)
		_, c := v.Part(parts.CapPart)
		if s && c {
			return NodeKey
		}
		return NodeAssembly
	}
	switch name {
	case parts.SocketPart:
		return NodeSocket
	case parts.CapPart:
		return NodeCap
	}
	return NodePart
}

func anchorData(b *anchor.Box) AnchorData {
	var d AnchorData
	if b == nil {
		return d
	}
	for i, c := range b.Corners() {
		d.Corners[i] = Vec3{X: c.X, Y: c.Y, Z: c.Z}
	}
	return d
}

// Lookup returns the node at path, or nil.
func (g *AssemblyGraph) Lookup(p string) *Node {
	id, ok := g.PathIndex[p]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node at path, or panics.
func (g *AssemblyGraph) MustLookup(p string) *Node {
	n := g.Lookup(p)
	if n == nil {
		panic(fmt.Sprintf("graph: no node at %q", p))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *AssemblyGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// OfKind returns the nodes of kind k in build order.
func (g *AssemblyGraph) OfKind(k NodeKind) []*Node {
	var out []*Node
	for _, id := range g.Order {
		if n := g.Nodes[id]; n != nil && n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *AssemblyGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *AssemblyGraph) NodeCount() int {
	return len(g.Nodes)
}

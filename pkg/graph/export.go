package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Joins adds dashed edges from each connector to the keys it bridges.
	Joins bool
	// Leaves includes socket and cap nodes under each key.
	Leaves bool
}

var kindStyle = map[NodeKind]string{
	NodeKeyboard:  `shape=box, style="rounded,filled", fillcolor="#d0e0ff"`,
	NodeColumn:    `shape=box, style="rounded,filled", fillcolor="#e0f0d0"`,
	NodeKey:       `shape=box, style=filled, fillcolor=white`,
	NodeConnector: `shape=diamond, style=filled, fillcolor="#ffe8c0"`,
	NodeSocket:    `shape=ellipse`,
	NodeCap:       `shape=ellipse`,
}

// ToDOT converts the graph to Graphviz DOT. Nodes appear in build order and
// are keyed by their short ID.
func ToDOT(g *AssemblyGraph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph keyboard {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12];\n\n")

	skip := func(n *Node) bool {
		return !opts.Leaves && (n.Kind == NodeSocket || n.Kind == NodeCap)
	}

	for _, id := range g.Order {
		n := g.Nodes[id]
		if skip(n) {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", dotLabel(n))}
		if s, ok := kindStyle[n.Kind]; ok {
			attrs = append(attrs, s)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.Short(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, id := range g.Order {
		n := g.Nodes[id]
		for _, c := range g.Children(n) {
			if skip(c) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID.Short(), c.ID.Short())
		}
		if d, ok := n.Data.(ConnectorData); ok && opts.Joins {
			for _, jid := range d.JoinIDs {
				if _, ok := g.Nodes[jid]; ok {
					fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none];\n", n.ID.Short(), jid.Short())
				}
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(n *Node) string {
	switch d := n.Data.(type) {
	case ColumnData:
		if len(d.Rows) == 0 {
			return n.Name
		}
		return fmt.Sprintf("%s\nrows %d..%d", n.Name, d.Rows[0], d.Rows[len(d.Rows)-1])
	case ConnectorData:
		return fmt.Sprintf("%s\narity %v", n.Name, d.Arity)
	}
	return n.Name
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: init graphviz: %w", err)
	}
	defer gv.Close()

	gg, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("graph: parse DOT: %w", err)
	}
	defer gg.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, gg, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("graph: render: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonGraph struct {
	Root  NodeID  `json:"root"`
	Nodes []*Node `json:"nodes"`
}

// WriteJSON writes the nodes in build order as indented JSON.
func WriteJSON(w io.Writer, g *AssemblyGraph) error {
	out := jsonGraph{Root: g.Root, Nodes: make([]*Node, 0, len(g.Order))}
	for _, id := range g.Order {
		out.Nodes = append(out.Nodes, g.Nodes[id])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("graph: encoding JSON: %w", err)
	}
	return nil
}

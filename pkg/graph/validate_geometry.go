package graph

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// validateGeometry runs the geometric tier: anchor sanity and connector
// coverage.
func validateGeometry(g *AssemblyGraph) ([]ValidationError, []ValidationWarning) {
	errs := validateFiniteAnchors(g)
	var warnings []ValidationWarning
	warnings = append(warnings, validateDuplicateJoins(g)...)
	warnings = append(warnings, validateUnconnectedKeys(g)...)
	warnings = append(warnings, validateFlatAnchors(g)...)
	return errs, warnings
}

func corners(n *Node) ([8]Vec3, bool) {
	switch d := n.Data.(type) {
	case AnchorData:
		return d.Corners, true
	case ColumnData:
		return d.Corners, true
	case ConnectorData:
		return d.Corners, true
	}
	return [8]Vec3{}, false
}

// validateFiniteAnchors rejects NaN or infinite anchor coordinates; they
// poison every seam built from them.
func validateFiniteAnchors(g *AssemblyGraph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.Order {
		n := g.Nodes[id]
		cs, ok := corners(n)
		if !ok {
			continue
		}
		for i, c := range cs {
			if !finite(c.X) || !finite(c.Y) || !finite(c.Z) {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("%s %q anchor corner %d is not finite: %v", n.Kind, n.Path, i, c),
					Severity: SeverityError,
				})
				break
			}
		}
	}
	return errs
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// joinKey identifies the set of keys a connector bridges, independent of
// point set order.
func joinKey(ids []NodeID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	slices.Sort(s)
	return strings.Join(s, ",")
}

// validateDuplicateJoins warns when two connectors bridge the same keys.
func validateDuplicateJoins(g *AssemblyGraph) []ValidationWarning {
	var warnings []ValidationWarning
	seen := make(map[string]*Node)
	for _, n := range g.OfKind(NodeConnector) {
		d, ok := n.Data.(ConnectorData)
		if !ok || len(d.JoinIDs) == 0 {
			continue
		}
		k := joinKey(d.JoinIDs)
		if first, dup := seen[k]; dup {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("connector %s bridges the same keys as %s", n.Path, first.Path),
			})
			continue
		}
		seen[k] = n
	}
	return warnings
}

// validateUnconnectedKeys warns about keys no connector touches in an
// assembly that has more than one key.
func validateUnconnectedKeys(g *AssemblyGraph) []ValidationWarning {
	keys := g.OfKind(NodeKey)
	if len(keys) < 2 {
		return nil
	}
	joined := make(map[NodeID]bool)
	for _, n := range g.OfKind(NodeConnector) {
		if d, ok := n.Data.(ConnectorData); ok {
			for _, id := range d.JoinIDs {
				joined[id] = true
			}
		}
	}
	var warnings []ValidationWarning
	for _, k := range keys {
		if !joined[k.ID] {
			warnings = append(warnings, ValidationWarning{
				NodeID:  k.ID,
				Message: fmt.Sprintf("key %s is not bridged by any connector", k.Path),
			})
		}
	}
	return warnings
}

// validateFlatAnchors warns about parts whose anchors have no extent along
// some axis.
func validateFlatAnchors(g *AssemblyGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, id := range g.Order {
		n := g.Nodes[id]
		cs, ok := corners(n)
		if !ok {
			continue
		}
		lo, hi := cs[0], cs[0]
		for _, c := range cs[1:] {
			lo = Vec3{math.Min(lo.X, c.X), math.Min(lo.Y, c.Y), math.Min(lo.Z, c.Z)}
			hi = Vec3{math.Max(hi.X, c.X), math.Max(hi.Y, c.Y), math.Max(hi.Z, c.Z)}
		}
		if hi.X == lo.X || hi.Y == lo.Y || hi.Z == lo.Z {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Message: fmt.Sprintf("%s %q has flat anchors", n.Kind, n.Path),
			})
		}
	}
	return warnings
}

package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks export
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

func (w ValidationWarning) String() string {
	return ValidationError{NodeID: w.NodeID, Message: w.Message, Severity: SeverityWarning}.Error()
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks and returns every finding. An empty
// slice means the graph is valid. It never mutates the graph.
func Validate(g *AssemblyGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateRoot(g)...)
	errs = append(errs, validateJoinTargets(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates
// errors from warnings.
func ValidateAll(g *AssemblyGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	geomErrs, geomWarnings := validateGeometry(g)
	result.Errors = append(result.Errors, geomErrs...)
	result.Warnings = append(result.Warnings, geomWarnings...)
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *AssemblyGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.Order {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child and join reference points to
// a node that exists.
func validateReferences(g *AssemblyGraph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.Order {
		node := g.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if d, ok := node.Data.(ConnectorData); ok {
			for i, jid := range d.JoinIDs {
				if _, ok := g.Nodes[jid]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("connector %s joins %q, which does not exist", node.Path, d.Joins[i]),
						Severity: SeverityError,
					})
				}
			}
		}
	}
	return errs
}

// validateRoot checks the root exists and warns about nodes the root
// cannot reach.
func validateRoot(g *AssemblyGraph) []ValidationError {
	if len(g.Nodes) == 0 {
		return nil
	}
	if _, ok := g.Nodes[g.Root]; !ok {
		return []ValidationError{{
			Message:  fmt.Sprintf("root reference %s does not exist", g.Root.Short()),
			Severity: SeverityError,
		}}
	}

	reachable := map[NodeID]bool{g.Root: true}
	queue := []NodeID{g.Root}
	for len(queue) > 0 {
		node := g.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	var errs []ValidationError
	for _, id := range g.Order {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from the root (orphan)", g.Nodes[id].Path),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateJoinTargets checks that connectors bridge keys, that a connector
// never lists the same key twice, and that its arity matches its joins.
func validateJoinTargets(g *AssemblyGraph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.OfKind(NodeConnector) {
		d, ok := n.Data.(ConnectorData)
		if !ok {
			continue
		}
		seen := make(map[NodeID]bool, len(d.JoinIDs))
		for i, jid := range d.JoinIDs {
			if seen[jid] {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("connector %s joins %q twice", n.Path, d.Joins[i]),
					Severity: SeverityError,
				})
			}
			seen[jid] = true
			if t := g.Nodes[jid]; t != nil && t.Kind != NodeKey {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("connector %s joins %q, which is a %s, not a key", n.Path, d.Joins[i], t.Kind),
					Severity: SeverityError,
				})
			}
		}
		if len(d.Arity) < 2 || len(d.Arity) > 4 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("connector %s bridges %d point sets", n.Path, len(d.Arity)),
				Severity: SeverityError,
			})
		}
		if len(d.Joins) > 0 && len(d.Joins) != len(d.Arity) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("connector %s has %d point sets but %d joins", n.Path, len(d.Arity), len(d.Joins)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

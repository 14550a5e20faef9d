package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier: the SHA-256 of the node's path
// in the assembly tree. Equal paths give equal IDs across builds.
type NodeID [sha256.Size]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives the ID of the node at path.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte("node:" + path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// String returns the full hex form.
func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 8 hex digits, for messages and labels.
func (id NodeID) Short() string { return id.String()[:8] }

// MarshalText encodes the ID as hex.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex ID.
func (id *NodeID) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return fmt.Errorf("graph: node id: %w", err)
	}
	if len(raw) != len(id) {
		return fmt.Errorf("graph: node id: want %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return nil
}

// NodeKind enumerates the parts of a keyboard assembly.
type NodeKind int

const (
	NodeKeyboard  NodeKind = iota // whole keyboard
	NodeColumn                    // one curved key column
	NodeKey                       // socket plus cap
	NodeSocket                    // switch plate
	NodeCap                       // keycap envelope
	NodeConnector                 // hull bridging anchor point sets
	NodeAssembly                  // any other composite
	NodePart                      // any other leaf
)

func (k NodeKind) String() string {
	switch k {
	case NodeKeyboard:
		return "keyboard"
	case NodeColumn:
		return "column"
	case NodeKey:
		return "key"
	case NodeSocket:
		return "socket"
	case NodeCap:
		return "cap"
	case NodeConnector:
		return "connector"
	case NodeAssembly:
		return "assembly"
	case NodePart:
		return "part"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is one part of the assembly tree.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data,omitempty"`
}

package graph

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Vec3 is a point in millimetres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AnchorData records a part's anchor corners in canonical corner order.
type AnchorData struct {
	Corners [8]Vec3 `json:"corners"`
}

func (AnchorData) nodeData() {}

// ColumnData describes a column node.
type ColumnData struct {
	AnchorData
	Rows []int `json:"rows"`
}

func (ColumnData) nodeData() {}

// ConnectorData describes a connector: how many points came from each
// bridged point set and which keys those sets belong to.
type ConnectorData struct {
	AnchorData
	Arity []int `json:"arity"`
	// Joins are the bridged key paths relative to the connector's parent.
	Joins []string `json:"joins,omitempty"`
	// JoinIDs are Joins resolved to node IDs.
	JoinIDs []NodeID `json:"join_ids,omitempty"`
}

func (ConnectorData) nodeData() {}

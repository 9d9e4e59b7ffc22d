package pargraph

// Node is a single vertex in a PAR graph. It wraps an opaque domain payload
// and carries the compatibility label used to restrict matching. A node may
// be mated to exactly one node in the opposite graph; the mate link is a
// weak symmetric back-reference, never an ownership edge.
type Node struct {
	graph *Graph
	index int
	label uint32
	data  any

	mate  *Node
	edges []*Edge
}

// Label returns the node's compatibility label. Labels are assigned at
// creation time and never change.
func (n *Node) Label() uint32 {
	return n.label
}

// Data returns the opaque payload attached at creation time.
func (n *Node) Data() any {
	return n.data
}

// Index returns the node's position in its graph's insertion order.
// Indexes are stable for the graph's lifetime and are the tie-breaker for
// all deterministic ordering decisions.
func (n *Node) Index() int {
	return n.index
}

// GetMate returns the node this node is mated to, or nil if unmated.
func (n *Node) GetMate() *Node {
	return n.mate
}

// MateWith mates this node with m, atomically updating both sides so the
// mutuality invariant (a.mate == b implies b.mate == a) always holds.
// Any existing mate on either side is detached first. Passing nil clears
// the relationship on both sides.
func (n *Node) MateWith(m *Node) {
	if n.mate == m {
		return
	}
	if n.mate != nil {
		n.mate.mate = nil
		n.mate = nil
	}
	if m == nil {
		return
	}
	if m.mate != nil {
		m.mate.mate = nil
	}
	n.mate = m
	m.mate = n
}

// AddEdge records a directed connection from the named output port of this
// node to the named input port of dst. Edges have no identity beyond their
// endpoints and ports and are read-only after construction, except for the
// routing-resource annotation attached when the edge is committed.
func (n *Node) AddEdge(srcPort string, dst *Node, dstPort string) *Edge {
	e := &Edge{
		Source:     n,
		SourcePort: srcPort,
		Dest:       dst,
		DestPort:   dstPort,
	}
	n.edges = append(n.edges, e)
	return e
}

// GetEdgeCount returns the number of outgoing edges.
func (n *Node) GetEdgeCount() int {
	return len(n.edges)
}

// GetEdgeByIndex returns the i'th outgoing edge in insertion order.
func (n *Node) GetEdgeByIndex(i int) *Edge {
	return n.edges[i]
}

// Edge is a directed connection between a source node's named output port
// and a destination node's named input port.
type Edge struct {
	Source     *Node
	SourcePort string
	Dest       *Node
	DestPort   string

	// RoutingResource names the physical pool this edge was committed to,
	// or is empty if the edge needed no shared routing resource.
	RoutingResource string
}

// Package pargraph provides the generic bipartite graph structure used by
// the place-and-route engine. Two graphs participate in a PAR run: one
// wrapping the logical netlist and one wrapping the physical device. The
// package has no knowledge of either domain; payloads are opaque and
// compatibility is expressed purely through integer labels.
package pargraph

// Graph owns a set of nodes in insertion order. Node iteration order is
// stable and never mutated by placement, which is what makes PAR results
// reproducible for identical input.
type Graph struct {
	nodes        []*Node
	nodesByLabel map[uint32][]*Node
	nextLabel    uint32
}

// NewGraph returns an empty graph with an empty label space.
func NewGraph() *Graph {
	return &Graph{
		nodesByLabel: make(map[uint32][]*Node),
	}
}

// AllocateLabel mints a fresh label unique within this graph's label space.
// Callers must allocate labels in lockstep across the netlist and device
// graphs so that equal labels mean compatible nodes; see par.AllocateLabel.
func (g *Graph) AllocateLabel() uint32 {
	l := g.nextLabel
	g.nextLabel++
	return l
}

// AddNode creates a node with the given label and payload and appends it to
// the graph. The label is fixed for the node's lifetime.
func (g *Graph) AddNode(label uint32, data any) *Node {
	n := &Node{
		graph: g,
		index: len(g.nodes),
		label: label,
		data:  data,
	}
	g.nodes = append(g.nodes, n)
	g.nodesByLabel[label] = append(g.nodesByLabel[label], n)
	return n
}

// GetNumNodes returns the node count.
func (g *Graph) GetNumNodes() int {
	return len(g.nodes)
}

// GetNodeByIndex returns the i'th node in insertion order.
func (g *Graph) GetNodeByIndex(i int) *Node {
	return g.nodes[i]
}

// NodesWithLabel returns all nodes carrying the given label, in insertion
// order. The returned slice is owned by the graph and must not be mutated.
func (g *Graph) NodesWithLabel(label uint32) []*Node {
	return g.nodesByLabel[label]
}

// UnmatedNodesWithLabel returns the nodes with the given label that have no
// mate, in insertion order. This is the placement engine's hot-path query.
func (g *Graph) UnmatedNodesWithLabel(label uint32) []*Node {
	var out []*Node
	for _, n := range g.nodesByLabel[label] {
		if n.mate == nil {
			out = append(out, n)
		}
	}
	return out
}

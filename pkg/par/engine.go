// Package par implements the generic place-and-route engine. It operates on
// a pair of pargraph graphs, one wrapping the logical netlist and one
// wrapping the physical device, and produces a label-compatible bijection
// from netlist nodes onto a subset of device nodes. Device-family specifics
// (the connectivity cost metric, placement constraints, and the physical
// routing pools) enter through the Hooks interface.
package par

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// maxOptimizePasses bounds the iterative improvement loop so the engine
// terminates even on pathological inputs.
const maxOptimizePasses = 100

// Hooks supplies the device-family behavior the generic engine cannot know.
type Hooks interface {
	// ConnectivityCost returns the cost of realizing a connection between
	// the two device nodes, using a fixed-topology distance/availability
	// metric. Lower is better; zero means free.
	ConnectivityCost(src, dst *pargraph.Node) int

	// CanMoveNode reports whether the netlist node may legally be placed on
	// the target device node, beyond plain label compatibility (placement
	// constraints and the like).
	CanMoveNode(n, target *pargraph.Node) bool

	// NodeName returns a human-readable name for a netlist node, used in
	// diagnostics only.
	NodeName(n *pargraph.Node) string

	// Route commits every netlist edge to physical routing resources once
	// both endpoints are mated. Returns a RouteError on pool exhaustion.
	Route(ngraph *pargraph.Graph) error
}

// neighbor records one adjacency of a netlist node, preserving edge
// direction so the cost hook sees (source, dest) in wire order.
type neighbor struct {
	other    *pargraph.Node
	isSource bool // true if the owning node drives this connection
}

// Engine runs placement and routing over one netlist/device graph pair. An
// engine is single-use and single-threaded; it exclusively owns both graphs
// for the duration of the run.
type Engine struct {
	ngraph *pargraph.Graph
	dgraph *pargraph.Graph
	labels LabelMap
	hooks  Hooks

	neighbors map[*pargraph.Node][]neighbor

	// Swaps counts accepted improvement swaps, exposed for reporting.
	Swaps int
}

// NewEngine builds an engine over the given graph pair. The adjacency index
// is computed once up front; the graphs must not change shape afterwards.
func NewEngine(ngraph, dgraph *pargraph.Graph, labels LabelMap, hooks Hooks) *Engine {
	e := &Engine{
		ngraph:    ngraph,
		dgraph:    dgraph,
		labels:    labels,
		hooks:     hooks,
		neighbors: make(map[*pargraph.Node][]neighbor),
	}
	for i := 0; i < ngraph.GetNumNodes(); i++ {
		n := ngraph.GetNodeByIndex(i)
		for j := 0; j < n.GetEdgeCount(); j++ {
			edge := n.GetEdgeByIndex(j)
			e.neighbors[n] = append(e.neighbors[n], neighbor{other: edge.Dest, isSource: true})
			e.neighbors[edge.Dest] = append(e.neighbors[edge.Dest], neighbor{other: n, isSource: false})
		}
	}
	return e
}

// PlaceAndRoute performs the full assignment: greedy seeding with local
// repair, bounded iterative improvement, then routing. On placement failure
// the partial mate assignment is left intact so the caller can print a
// best-effort report.
func (e *Engine) PlaceAndRoute() error {
	var unplaced []*pargraph.Node
	for i := 0; i < e.ngraph.GetNumNodes(); i++ {
		n := e.ngraph.GetNodeByIndex(i)
		if n.GetMate() != nil {
			// Re-running on a stable assignment is a no-op.
			continue
		}
		if !e.placeNode(n) {
			unplaced = append(unplaced, n)
		}
	}

	if len(unplaced) > 0 {
		perr := &PlacementError{Unplaced: unplaced}
		for _, n := range unplaced {
			perr.Names = append(perr.Names,
				fmt.Sprintf("%s (%s)", e.hooks.NodeName(n), e.labels.Describe(n.Label())))
		}
		return perr
	}

	e.optimizePlacement()

	// Every node must be mated at this point or the engine has a bug.
	for i := 0; i < e.ngraph.GetNumNodes(); i++ {
		if e.ngraph.GetNodeByIndex(i).GetMate() == nil {
			return InternalErrorf("node %q lost its mate during optimization",
				e.hooks.NodeName(e.ngraph.GetNodeByIndex(i)))
		}
	}

	return e.hooks.Route(e.ngraph)
}

// placeNode seeds one netlist node onto the free compatible device node with
// the lowest connectivity cost, falling back to a single-swap rip-up when no
// compatible node is free. Ties break toward the lowest device-node index.
func (e *Engine) placeNode(n *pargraph.Node) bool {
	var best *pargraph.Node
	bestCost := 0
	for _, cand := range e.dgraph.UnmatedNodesWithLabel(n.Label()) {
		if !e.hooks.CanMoveNode(n, cand) {
			continue
		}
		cost := e.placementCost(n, cand)
		if best == nil || cost < bestCost {
			best = cand
			bestCost = cost
		}
	}
	if best != nil {
		n.MateWith(best)
		return true
	}
	return e.ripUp(n)
}

// ripUp attempts a single-swap repair: find a compatible device node whose
// current occupant can itself be relocated to a still-free compatible node,
// relocate the occupant, and claim the vacated node.
func (e *Engine) ripUp(n *pargraph.Node) bool {
	for _, site := range e.dgraph.NodesWithLabel(n.Label()) {
		occupant := site.GetMate()
		if occupant == nil || !e.hooks.CanMoveNode(n, site) {
			continue
		}
		for _, alt := range e.dgraph.UnmatedNodesWithLabel(occupant.Label()) {
			if alt == site || !e.hooks.CanMoveNode(occupant, alt) {
				continue
			}
			occupant.MateWith(alt)
			n.MateWith(site)
			return true
		}
	}
	return false
}

// placementCost sums, over the node's already-placed neighbors, the cost of
// realizing each connection if n were placed on site.
func (e *Engine) placementCost(n, site *pargraph.Node) int {
	cost := 0
	for _, nb := range e.neighbors[n] {
		mate := nb.other.GetMate()
		if mate == nil {
			continue
		}
		if nb.isSource {
			cost += e.hooks.ConnectivityCost(site, mate)
		} else {
			cost += e.hooks.ConnectivityCost(mate, site)
		}
	}
	return cost
}

// totalCost is the cost of the whole current assignment: the connectivity
// cost of every netlist edge whose endpoints are both placed.
func (e *Engine) totalCost() int {
	cost := 0
	for i := 0; i < e.ngraph.GetNumNodes(); i++ {
		n := e.ngraph.GetNodeByIndex(i)
		src := n.GetMate()
		if src == nil {
			continue
		}
		for j := 0; j < n.GetEdgeCount(); j++ {
			dst := n.GetEdgeByIndex(j).Dest.GetMate()
			if dst == nil {
				continue
			}
			cost += e.hooks.ConnectivityCost(src, dst)
		}
	}
	return cost
}

// optimizePlacement repeatedly attempts pairwise swaps of equal-label mated
// device nodes, accepting a swap only when it strictly reduces the total
// connectivity cost. Stops when a full pass finds no improving swap or after
// maxOptimizePasses.
func (e *Engine) optimizePlacement() {
	cur := e.totalCost()
	for pass := 0; pass < maxOptimizePasses; pass++ {
		improved := false
		for i := 0; i < e.ngraph.GetNumNodes(); i++ {
			a := e.ngraph.GetNodeByIndex(i)
			da := a.GetMate()
			if da == nil {
				continue
			}
			for j := i + 1; j < e.ngraph.GetNumNodes(); j++ {
				b := e.ngraph.GetNodeByIndex(j)
				db := b.GetMate()
				if db == nil || a.Label() != b.Label() {
					continue
				}
				if !e.hooks.CanMoveNode(a, db) || !e.hooks.CanMoveNode(b, da) {
					continue
				}
				a.MateWith(db)
				b.MateWith(da)
				trial := e.totalCost()
				if trial < cur {
					cur = trial
					e.Swaps++
					improved = true
					da, db = db, da
				} else {
					a.MateWith(da)
					b.MateWith(db)
				}
			}
		}
		if !improved {
			return
		}
	}
}

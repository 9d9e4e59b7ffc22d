package fitter

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// hooks supplies the GreenPAK4 behavior to the generic engine: the
// cross-matrix connectivity metric, LOC constraint enforcement, and the
// cross-connection router.
type hooks struct {
	dev *greenpak4.Device
}

func newHooks(dev *greenpak4.Device) *hooks {
	return &hooks{dev: dev}
}

// ConnectivityCost charges one unit for every connection that has to cross
// between matrices, since each such connection consumes a cross connection
// from a finite pool. Same-matrix and global connections are free.
func (h *hooks) ConnectivityCost(src, dst *pargraph.Node) int {
	se := src.Data().(greenpak4.Entity)
	de := dst.Data().(greenpak4.Entity)
	if _, crosses := h.dev.PoolForConnection(se, de); crosses {
		return 1
	}
	return 0
}

// CanMoveNode enforces LOC constraints. Constrained cells already carry a
// dedicated label, so this is a backstop for the rip-up and swap paths.
func (h *hooks) CanMoveNode(n, target *pargraph.Node) bool {
	cell := n.Data().(*netlist.Cell)
	if cell.Loc == "" {
		return true
	}
	return target.Data().(greenpak4.Entity).Description() == cell.Loc
}

func (h *hooks) NodeName(n *pargraph.Node) string {
	return n.Data().(*netlist.Cell).Name()
}

// Route assigns every matrix-crossing netlist edge a cross connection.
// Fan-out from one source into the same direction shares a single cross
// connection, so capacity is charged per distinct (source, pool) pair.
// Edges are visited in graph order, which keeps pool usage deterministic.
func (h *hooks) Route(ngraph *pargraph.Graph) error {
	capacity := make(map[string]int)
	for _, pool := range h.dev.RoutingPools() {
		capacity[pool.Name] = pool.Capacity
	}

	type allocKey struct {
		src  *pargraph.Node
		pool string
	}
	used := make(map[string]int)
	allocated := make(map[allocKey]bool)

	for i := 0; i < ngraph.GetNumNodes(); i++ {
		n := ngraph.GetNodeByIndex(i)
		for j := 0; j < n.GetEdgeCount(); j++ {
			edge := n.GetEdgeByIndex(j)
			srcEnt := edge.Source.GetMate().Data().(greenpak4.Entity)
			dstEnt := edge.Dest.GetMate().Data().(greenpak4.Entity)

			pool, needs := h.dev.PoolForConnection(srcEnt, dstEnt)
			if !needs {
				edge.RoutingResource = ""
				continue
			}

			key := allocKey{src: edge.Source, pool: pool}
			if allocated[key] {
				// Cluster the fan-out through the already-claimed resource.
				edge.RoutingResource = pool
				continue
			}
			if used[pool] >= capacity[pool] {
				return &par.RouteError{Pool: pool, Edge: describeEdge(edge)}
			}
			used[pool]++
			allocated[key] = true
			edge.RoutingResource = pool
		}
	}
	return nil
}

func describeEdge(edge *pargraph.Edge) string {
	src := edge.Source.Data().(*netlist.Cell)
	dst := edge.Dest.Data().(*netlist.Cell)
	return fmt.Sprintf("%s.%s -> %s.%s", src.Name(), edge.SourcePort, dst.Name(), edge.DestPort)
}

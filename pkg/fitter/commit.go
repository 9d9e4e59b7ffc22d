package fitter

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// CommitChanges copies the resolved placement into the persistent device
// configuration model: every used site pulls its static configuration from
// the cell placed on it, every routed netlist edge becomes an input signal
// binding on its destination site, and the per-pool route usage counters are
// tallied from the routing annotations. The graphs are not mutated.
func CommitChanges(ngraph, dgraph *pargraph.Graph, dev *greenpak4.Device) (map[string]int, error) {
	for i := 0; i < dgraph.GetNumNodes(); i++ {
		ent := dgraph.GetNodeByIndex(i).Data().(greenpak4.Entity)
		if err := ent.CommitChanges(); err != nil {
			return nil, fmt.Errorf("fitter: commit failed: %w", err)
		}
	}

	type allocKey struct {
		src  *pargraph.Node
		pool string
	}
	routesUsed := make(map[string]int)
	for _, pool := range dev.RoutingPools() {
		routesUsed[pool.Name] = 0
	}
	counted := make(map[allocKey]bool)

	for i := 0; i < ngraph.GetNumNodes(); i++ {
		n := ngraph.GetNodeByIndex(i)
		for j := 0; j < n.GetEdgeCount(); j++ {
			edge := n.GetEdgeByIndex(j)
			srcEnt := edge.Source.GetMate().Data().(greenpak4.Entity)
			dstEnt := edge.Dest.GetMate().Data().(greenpak4.Entity)

			sig := srcEnt.GetOutput(edge.SourcePort)
			if err := dstEnt.SetInput(edge.DestPort, sig); err != nil {
				return nil, fmt.Errorf("fitter: commit failed for %s: %w", describeEdge(edge), err)
			}

			if edge.RoutingResource == "" {
				continue
			}
			key := allocKey{src: edge.Source, pool: edge.RoutingResource}
			if !counted[key] {
				counted[key] = true
				routesUsed[edge.RoutingResource]++
			}
		}
	}

	return routesUsed, nil
}

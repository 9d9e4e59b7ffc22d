package fitter

import (
	"fmt"
	"io"
	"sort"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// PrintUtilizationReport writes the per-site-class usage summary, the
// routing pool usage, and the configuration digest.
func PrintUtilizationReport(w io.Writer, dev *greenpak4.Device, routesUsed map[string]int) {
	fmt.Fprintf(w, "\nDevice utilization:\n")

	total := make(map[string]int)
	used := make(map[string]int)
	for _, ent := range dev.Entities() {
		total[ent.TypeName()]++
		if node := ent.PARNode(); node != nil && node.GetMate() != nil {
			used[ent.TypeName()]++
		}
	}
	classes := make([]string, 0, len(total))
	for class := range total {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		pct := 100 * float64(used[class]) / float64(total[class])
		fmt.Fprintf(w, "    %-8s %2d/%2d (%.0f %%)\n", class+":", used[class], total[class], pct)
	}

	for _, pool := range dev.RoutingPools() {
		n := routesUsed[pool.Name]
		pct := 100 * float64(n) / float64(pool.Capacity)
		fmt.Fprintf(w, "    %-24s %2d/%2d (%.0f %%)\n", pool.Name+":", n, pool.Capacity, pct)
	}

	fmt.Fprintf(w, "    Config digest: %016x\n", dev.ConfigDigest())
}

// PrintPlacementReport writes the netlist-name to device-site table,
// including provisionally unplaced nodes so a failed run still shows its
// best effort.
func PrintPlacementReport(w io.Writer, ngraph *pargraph.Graph) {
	fmt.Fprintf(w, "\nPlacement report:\n")
	fmt.Fprintf(w, "    +----------------------------------+-----------------+\n")
	for i := 0; i < ngraph.GetNumNodes(); i++ {
		node := ngraph.GetNodeByIndex(i)
		cell := node.Data().(*netlist.Cell)
		site := "(unplaced)"
		if mate := node.GetMate(); mate != nil {
			site = mate.Data().(greenpak4.Entity).Description()
		}
		fmt.Fprintf(w, "    | %-32s | %-15s |\n", cell.Name(), site)
	}
	fmt.Fprintf(w, "    +----------------------------------+-----------------+\n")
}

package fitter

import (
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
)

// Options configures a run.
type Options struct {
	// Out receives all reports and findings; defaults to stdout.
	Out io.Writer
}

// Run performs the full fit: build graphs, place and route, commit into the
// device configuration, post-PAR DRC, reports. On any failure after
// placement started, the best-effort placement report is printed before
// returning, and the error classifies the failure (par.ErrInternal for
// engine bugs, everything else user-recoverable).
func Run(mod *netlist.Module, dev *greenpak4.Device, opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintf(out, "\nCreating netlist graphs...\n")
	ngraph, dgraph, lmap, err := BuildGraphs(mod, dev)
	if err != nil {
		return err
	}

	engine := par.NewEngine(ngraph, dgraph, lmap, newHooks(dev))
	if err := engine.PlaceAndRoute(); err != nil {
		PrintPlacementReport(out, ngraph)
		fmt.Fprintf(out, "\nPAR failed\n")
		return err
	}

	routesUsed, err := CommitChanges(ngraph, dgraph, dev)
	if err != nil {
		PrintPlacementReport(out, ngraph)
		return err
	}

	fmt.Fprintf(out, "\nPost-PAR design rule checks\n")
	msgs, drcErr := PostPARDRC(ngraph, dev)
	for _, m := range msgs {
		fmt.Fprintf(out, "    %s\n", m)
	}
	if drcErr != nil {
		PrintPlacementReport(out, ngraph)
		return drcErr
	}

	PrintUtilizationReport(out, dev, routesUsed)
	PrintPlacementReport(out, ngraph)
	return nil
}

// Package fitter drives a full place-and-route run for the GreenPAK4
// family: it wraps the netlist and device in a graph pair, runs the generic
// engine with device-specific cost and routing behavior, commits the result
// into the device configuration model, validates it with the post-PAR design
// rule checks, and emits utilization and placement reports.
package fitter

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// siteClasses lists every compatibility class in fixed order, paired with
// the diagnostic description recorded in the label map.
var siteClasses = []struct {
	class string
	desc  string
}{
	{"GND", "ground rail"},
	{"VDD", "power rail"},
	{"IOB", "I/O buffer"},
	{"ACMP", "analog comparator"},
	{"LUT2", "2-input LUT"},
	{"LUT3", "3-input LUT"},
	{"LFOSC", "low-frequency oscillator"},
	{"RINGOSC", "ring oscillator"},
	{"RCOSC", "RC oscillator"},
	{"VREF", "voltage reference"},
	{"PGA", "programmable-gain amplifier"},
	{"POR", "power-on reset"},
}

// classForCellType maps a netlist primitive type to its site class.
var classForCellType = map[string]string{
	"GP_IBUF":    "IOB",
	"GP_OBUF":    "IOB",
	"GP_IOBUF":   "IOB",
	"GP_ACMP":    "ACMP",
	"GP_2LUT":    "LUT2",
	"GP_3LUT":    "LUT3",
	"GP_LFOSC":   "LFOSC",
	"GP_RINGOSC": "RINGOSC",
	"GP_RCOSC":   "RCOSC",
	"GP_VREF":    "VREF",
	"GP_PGA":     "PGA",
	"GP_POR":     "POR",
	"GP_VDD":     "VDD",
	"GP_VSS":     "GND",
}

// BuildGraphs wraps the netlist module and device inventory in a pair of
// graphs with labels allocated in lockstep. Cells pinned by a LOC constraint
// get a dedicated label shared only with the named site, which makes the
// constraint binding part of ordinary label matching.
func BuildGraphs(mod *netlist.Module, dev *greenpak4.Device) (*pargraph.Graph, *pargraph.Graph, par.LabelMap, error) {
	ngraph := pargraph.NewGraph()
	dgraph := pargraph.NewGraph()
	lmap := make(par.LabelMap)

	classLabels := make(map[string]uint32)
	for _, sc := range siteClasses {
		label, err := par.AllocateLabel(ngraph, dgraph, lmap, sc.desc)
		if err != nil {
			return nil, nil, nil, err
		}
		classLabels[sc.class] = label
	}

	// One dedicated label per LOC-constrained cell.
	locLabels := make(map[string]uint32)
	locOwners := make(map[string]string)
	for _, cell := range mod.CellsSorted() {
		if cell.Loc == "" {
			continue
		}
		site, ok := dev.EntityByName(cell.Loc)
		if !ok {
			return nil, nil, nil, fmt.Errorf(
				"fitter: cell %q is constrained to %q, but the device has no such site",
				cell.Name(), cell.Loc)
		}
		class, ok := classForCellType[cell.Type]
		if !ok {
			return nil, nil, nil, fmt.Errorf(
				"fitter: no site on %s can implement cell %q of type %s",
				dev.Part(), cell.Name(), cell.Type)
		}
		if class != site.TypeName() {
			return nil, nil, nil, fmt.Errorf(
				"fitter: cell %q of type %s cannot be placed on site %s",
				cell.Name(), cell.Type, cell.Loc)
		}
		if owner, dup := locOwners[cell.Loc]; dup {
			return nil, nil, nil, fmt.Errorf(
				"fitter: cells %q and %q are both constrained to site %s",
				owner, cell.Name(), cell.Loc)
		}
		label, err := par.AllocateLabel(ngraph, dgraph, lmap,
			fmt.Sprintf("%s (constrained to %s)", lmap.Describe(classLabels[class]), cell.Loc))
		if err != nil {
			return nil, nil, nil, err
		}
		locLabels[cell.Loc] = label
		locOwners[cell.Loc] = cell.Name()
	}

	// Device nodes, in inventory order.
	for _, ent := range dev.Entities() {
		label, ok := locLabels[ent.Description()]
		if !ok {
			label = classLabels[ent.TypeName()]
		}
		ent.SetPARNode(dgraph.AddNode(label, ent))
	}

	// Netlist nodes, in name order.
	for _, cell := range mod.CellsSorted() {
		var label uint32
		if cell.Loc != "" {
			label = locLabels[cell.Loc]
		} else {
			class, ok := classForCellType[cell.Type]
			if !ok {
				return nil, nil, nil, fmt.Errorf(
					"fitter: no site on %s can implement cell %q of type %s",
					dev.Part(), cell.Name(), cell.Type)
			}
			label = classLabels[class]
		}
		cell.SetPARNode(ngraph.AddNode(label, cell))
	}

	// Edges: one per driver/load pair, in net-number order.
	for _, net := range mod.NetsSorted() {
		if net.Driver.Cell == nil {
			continue
		}
		src := net.Driver.Cell.PARNode()
		for _, load := range net.Loads {
			src.AddEdge(net.Driver.Port, load.Cell.PARNode(), load.Port)
		}
	}

	return ngraph, dgraph, lmap, nil
}

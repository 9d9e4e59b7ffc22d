package par

import (
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// LabelMap stores the diagnostic description for each allocated label. It is
// used only for error and report output, never for matching logic.
type LabelMap map[uint32]string

// AllocateLabel mints one label from each graph's counter and records the
// description for diagnostics. The two graphs must always mint labels in
// lockstep for compatibility comparison to be meaningful, so a divergence
// between the counters is an internal fault, not a recoverable condition.
func AllocateLabel(ngraph, dgraph *pargraph.Graph, lmap LabelMap, description string) (uint32, error) {
	nlabel := ngraph.AllocateLabel()
	dlabel := dgraph.AllocateLabel()
	if nlabel != dlabel {
		return 0, InternalErrorf(
			"labels were allocated at the same time but don't match up (netlist %d, device %d)",
			nlabel, dlabel)
	}
	lmap[nlabel] = description
	return nlabel, nil
}

// Describe returns the human-readable description for a label, or a numeric
// placeholder if the label was never registered.
func (m LabelMap) Describe(label uint32) string {
	if d, ok := m[label]; ok {
		return d
	}
	return "unknown label"
}

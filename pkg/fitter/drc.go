package fitter

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

// DRCError is a fatal design rule violation. The message carries the full
// diagnostic context, including every conflicting requester.
type DRCError struct {
	msg string
}

func (e *DRCError) Error() string {
	return "drc: " + e.msg
}

// PostPARDRC validates global legality conditions against the committed
// device state. It returns non-fatal findings as printable messages and the
// first fatal finding as an error. The one self-repairing case, the shared
// ACMP0 input mux, is fixed in place and reported as an INFO message.
func PostPARDRC(ngraph *pargraph.Graph, dev *greenpak4.Device) ([]string, error) {
	var msgs []string

	// Netlist nodes with no load. Power rails never need one, sites with no
	// output ports obviously have none, and an output-configured I/O
	// buffer's load is the outside world.
	for i := 0; i < ngraph.GetNumNodes(); i++ {
		node := ngraph.GetNodeByIndex(i)
		cell := node.Data().(*netlist.Cell)

		mate := node.GetMate()
		if mate == nil {
			return msgs, par.InternalErrorf("node %q is not mapped to any site in the device", cell.Name())
		}
		ent := mate.Data().(greenpak4.Entity)

		if ent.Caps().PowerRail {
			continue
		}
		if len(ent.OutputPorts()) == 0 {
			continue
		}
		if cell.Type == "GP_IOBUF" || cell.Type == "GP_OBUF" {
			continue
		}
		if node.GetEdgeCount() == 0 {
			msgs = append(msgs, fmt.Sprintf("WARNING: Node %q has no load", cell.Name()))
		}
	}

	// An analog-only source on a digitally configured input buffer cannot
	// reach the pin correctly.
	for _, pin := range dev.IOBPins() {
		iob := dev.GetIOB(pin)
		sig := iob.GetOutputSignal()
		if sig.IsAnalog() && !iob.IsAnalogIbuf() {
			return msgs, &DRCError{msg: fmt.Sprintf(
				"pin %d is driven by an analog source (%s) but does not have IBUF_TYPE = ANALOG",
				pin, sig.GetOutputName())}
		}
	}

	if dev.Part() == greenpak4.PartSLG46620 {
		var err error
		msgs, err = checkSharedACMPMux(msgs, dev)
		if err != nil {
			return msgs, err
		}
	}

	return checkOscillatorPowerDown(msgs, dev)
}

// checkSharedACMPMux reconciles every comparator that could be driven
// through ACMP0's physical input mux. All of them must agree on one signal;
// if they do but ACMP0 itself is idle, ACMP0 is auto-enabled so the shared
// mux actually carries it.
func checkSharedACMPMux(msgs []string, dev *greenpak4.Device) ([]string, error) {
	pin6 := dev.GetIOB(6).GetOutput("OUT")
	vdd := dev.GetPower()
	gnd := dev.GetGround()

	type request struct {
		name  string
		input greenpak4.EntityOutput
	}
	var requests []request

	for i := 0; i < dev.GetAcmpCount(); i++ {
		acmp := dev.GetAcmp(i)
		input := acmp.GetInputSignal()

		// Only the buffered pin 6 signal and VDD go through the shared mux.
		if input != pin6 && input != vdd {
			continue
		}

		mate := acmp.PARNode().GetMate()
		if mate == nil {
			continue
		}
		cell := mate.Data().(*netlist.Cell)
		requests = append(requests, request{name: cell.Name(), input: input})
	}

	shared := gnd
	for _, r := range requests {
		if shared == gnd {
			shared = r.input
		}
		if shared == r.input {
			continue
		}

		var b strings.Builder
		b.WriteString("multiple comparators tried to simultaneously use different outputs from the ACMP0 input mux\n")
		for _, r := range requests {
			fmt.Fprintf(&b, "    Comparator %10s requested %s\n", r.name, r.input.GetOutputName())
		}
		return msgs, &DRCError{msg: b.String()}
	}

	acmp0 := dev.GetAcmp(0)
	if acmp0.GetInputSignal() == gnd && len(requests) > 0 {
		msgs = append(msgs, "INFO: Enabling ACMP0 and configuring input mux, since output of mux is used but ACMP0 is not instantiated")
		acmp0.SetInputSignal(shared)
		acmp0.SetPowerEn(dev.GetPowerOnReset().GetOutput("RST_DONE"))
	}

	return msgs, nil
}

// checkOscillatorPowerDown verifies that every in-use oscillator with a
// non-constant power-down input derives it from the same signal.
func checkOscillatorPowerDown(msgs []string, dev *greenpak4.Device) ([]string, error) {
	type powerdown struct {
		desc string
		sig  greenpak4.EntityOutput
	}
	var powerdowns []powerdown

	for _, osc := range []*greenpak4.Oscillator{
		dev.GetLFOscillator(),
		dev.GetRingOscillator(),
		dev.GetRCOscillator(),
	} {
		if osc.IsUsed() && osc.GetPowerDownEn() && !osc.IsConstantPowerDown() {
			powerdowns = append(powerdowns, powerdown{desc: osc.Description(), sig: osc.GetPowerDown()})
		}
	}
	if len(powerdowns) == 0 {
		return msgs, nil
	}

	src := dev.GetGround()
	ok := true
	for _, p := range powerdowns {
		if src.IsPowerRail() {
			src = p.sig
		}
		if src != p.sig {
			ok = false
		}
	}
	if !ok {
		var b strings.Builder
		b.WriteString("multiple oscillators have power-down enabled, but do not share the same power-down signal\n")
		for _, p := range powerdowns {
			fmt.Fprintf(&b, "    Oscillator %10s powerdown is %s\n", p.desc, p.sig.GetOutputName())
		}
		return msgs, &DRCError{msg: b.String()}
	}

	return msgs, nil
}

package fitter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePAR/pkg/greenpak4"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/netlist"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/par"
	"github.com/OpenTraceLab/OpenTracePAR/pkg/pargraph"
)

type fitResult struct {
	dev    *greenpak4.Device
	ngraph *pargraph.Graph
	dgraph *pargraph.Graph
	routes map[string]int
	msgs   []string
}

// runFit executes the full pipeline step by step so tests can inspect the
// intermediate state. Run wraps the same sequence for callers.
func runFit(t *testing.T, mod *netlist.Module) (*fitResult, error) {
	t.Helper()
	dev, err := greenpak4.NewDevice(greenpak4.PartSLG46620)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}

	ngraph, dgraph, lmap, err := BuildGraphs(mod, dev)
	if err != nil {
		return nil, err
	}
	res := &fitResult{dev: dev, ngraph: ngraph, dgraph: dgraph}

	if err := par.NewEngine(ngraph, dgraph, lmap, newHooks(dev)).PlaceAndRoute(); err != nil {
		return res, err
	}
	res.routes, err = CommitChanges(ngraph, dgraph, dev)
	if err != nil {
		return res, err
	}
	res.msgs, err = PostPARDRC(ngraph, dev)
	return res, err
}

func mustCell(t *testing.T, m *netlist.Module, name, typ string) *netlist.Cell {
	t.Helper()
	c, err := m.AddCell(name, typ)
	if err != nil {
		t.Fatalf("AddCell(%s): %v", name, err)
	}
	return c
}

func siteOf(t *testing.T, c *netlist.Cell) string {
	t.Helper()
	node := c.PARNode()
	if node == nil || node.GetMate() == nil {
		t.Fatalf("cell %q has no placement", c.Name())
	}
	return node.GetMate().Data().(greenpak4.Entity).Description()
}

// Scenario: a buffered input feeding a comparator places, routes, and
// commits cleanly.
func TestFitBufferIntoComparator(t *testing.T) {
	m := netlist.NewModule("top")
	ibuf := mustCell(t, m, "ibuf1", "GP_IBUF")
	cmp := mustCell(t, m, "cmp1", "GP_ACMP")
	net := m.Net(2)
	m.Connect(ibuf, "OUT", "output", net)
	m.Connect(cmp, "VIN", "input", net)

	res, err := runFit(t, m)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// Both nodes mated, symmetric, equal labels, distinct sites.
	for i := 0; i < res.ngraph.GetNumNodes(); i++ {
		n := res.ngraph.GetNodeByIndex(i)
		mate := n.GetMate()
		if mate == nil {
			t.Fatalf("node %d unmated", i)
		}
		if mate.GetMate() != n {
			t.Fatalf("mate symmetry broken")
		}
		if mate.Label() != n.Label() {
			t.Fatalf("label mismatch on matched pair")
		}
	}
	if siteOf(t, ibuf) == siteOf(t, cmp) {
		t.Fatalf("two cells on one site")
	}

	// The comparator's input signal must be the buffered pin.
	iob, _ := res.dev.EntityByName(siteOf(t, ibuf))
	wantSig := iob.GetOutput("OUT")
	acmp, _ := res.dev.EntityByName(siteOf(t, cmp))
	if acmp.(*greenpak4.ACMP).GetInputSignal() != wantSig {
		t.Fatalf("comparator input not committed")
	}

	// The comparator's unconnected output is a warning, never an error.
	found := false
	for _, msg := range res.msgs {
		if strings.Contains(msg, "cmp1") && strings.Contains(msg, "no load") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a no-load warning for cmp1, got %v", res.msgs)
	}
}

// Scenario: a label with no free site fails placement, naming the node.
func TestFitFailsWhenSitesExhausted(t *testing.T) {
	m := netlist.NewModule("top")
	mustCell(t, m, "vref_a", "GP_VREF")
	mustCell(t, m, "vref_b", "GP_VREF")

	res, err := runFit(t, m)
	if !errors.Is(err, par.ErrUnplaceable) {
		t.Fatalf("err = %v, want ErrUnplaceable", err)
	}
	if !strings.Contains(err.Error(), "vref_b") {
		t.Fatalf("error does not name the unplaced node: %v", err)
	}

	// Best-effort placement survives for reporting.
	if res.ngraph.GetNodeByIndex(0).GetMate() == nil {
		t.Fatalf("vref_a lost its placement on failure")
	}
}

// Scenario: conflicting shared-mux requests fail DRC listing every
// requester.
func TestSharedMuxConflict(t *testing.T) {
	m := netlist.NewModule("top")
	ibuf := mustCell(t, m, "pin6_buf", "GP_IBUF")
	ibuf.Loc = "P6"
	vdd := mustCell(t, m, "vdd", "GP_VDD")
	cmpA := mustCell(t, m, "cmp_a", "GP_ACMP")
	cmpA.Loc = "ACMP1"
	cmpB := mustCell(t, m, "cmp_b", "GP_ACMP")
	cmpB.Loc = "ACMP2"

	n1 := m.Net(2)
	m.Connect(ibuf, "OUT", "output", n1)
	m.Connect(cmpA, "VIN", "input", n1)
	n2 := m.Net(3)
	m.Connect(vdd, "OUT", "output", n2)
	m.Connect(cmpB, "VIN", "input", n2)

	_, err := runFit(t, m)
	var derr *DRCError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want DRCError", err)
	}
	if !strings.Contains(err.Error(), "cmp_a") || !strings.Contains(err.Error(), "cmp_b") {
		t.Fatalf("conflict diagnostic missing a requester: %v", err)
	}
}

// Scenario: one downstream shared-mux user with ACMP0 idle auto-enables
// ACMP0 with the requested input.
func TestSharedMuxAutoEnable(t *testing.T) {
	m := netlist.NewModule("top")
	ibuf := mustCell(t, m, "pin6_buf", "GP_IBUF")
	ibuf.Loc = "P6"
	cmp := mustCell(t, m, "cmp_a", "GP_ACMP")
	cmp.Loc = "ACMP1"

	n1 := m.Net(2)
	m.Connect(ibuf, "OUT", "output", n1)
	m.Connect(cmp, "VIN", "input", n1)

	res, err := runFit(t, m)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	acmp0 := res.dev.GetAcmp(0)
	pin6 := res.dev.GetIOB(6).GetOutput("OUT")
	if acmp0.GetInputSignal() != pin6 {
		t.Fatalf("ACMP0 input = %s, want buffered pin 6", acmp0.GetInputSignal().GetOutputName())
	}
	want := res.dev.GetPowerOnReset().GetOutput("RST_DONE")
	if acmp0.GetPowerEn() != want {
		t.Fatalf("ACMP0 power enable = %s, want POR.RST_DONE", acmp0.GetPowerEn().GetOutputName())
	}

	enabled := false
	for _, msg := range res.msgs {
		if strings.Contains(msg, "Enabling ACMP0") {
			enabled = true
		}
	}
	if !enabled {
		t.Fatalf("auto-enable not reported: %v", res.msgs)
	}
}

// A power rail with no load is normal and produces no warning.
func TestPowerRailNoLoadExemption(t *testing.T) {
	m := netlist.NewModule("top")
	mustCell(t, m, "vdd", "GP_VDD")

	res, err := runFit(t, m)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for _, msg := range res.msgs {
		if strings.Contains(msg, "no load") {
			t.Fatalf("power rail warned about missing load: %v", res.msgs)
		}
	}
}

// An output-configured I/O buffer's load is external: no warning either.
func TestOutputBufferNoLoadExemption(t *testing.T) {
	m := netlist.NewModule("top")
	lut := mustCell(t, m, "blinker", "GP_2LUT")
	obuf := mustCell(t, m, "led", "GP_OBUF")
	n := m.Net(2)
	m.Connect(lut, "OUT", "output", n)
	m.Connect(obuf, "IN", "input", n)

	res, err := runFit(t, m)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for _, msg := range res.msgs {
		if strings.Contains(msg, "led") {
			t.Fatalf("output buffer warned about missing load: %v", res.msgs)
		}
	}
}

func TestAnalogSourceNeedsAnalogIbuf(t *testing.T) {
	build := func(analog bool) *netlist.Module {
		m := netlist.NewModule("top")
		vref := mustCell(t, m, "ref", "GP_VREF")
		obuf := mustCell(t, m, "out_1", "GP_OBUF")
		if analog {
			obuf.Parameters["IBUF_TYPE"] = "ANALOG"
		}
		n := m.Net(2)
		m.Connect(vref, "VOUT", "output", n)
		m.Connect(obuf, "IN", "input", n)
		return m
	}

	_, err := runFit(t, build(false))
	var derr *DRCError
	if !errors.As(err, &derr) {
		t.Fatalf("digital ibuf on analog source: err = %v, want DRCError", err)
	}
	if !strings.Contains(err.Error(), "analog source") {
		t.Fatalf("diagnostic missing analog context: %v", err)
	}

	if _, err := runFit(t, build(true)); err != nil {
		t.Fatalf("analog ibuf still rejected: %v", err)
	}
}

func TestOscillatorPowerDownMismatch(t *testing.T) {
	m := netlist.NewModule("top")
	lutA := mustCell(t, m, "gate_a", "GP_2LUT")
	lutB := mustCell(t, m, "gate_b", "GP_2LUT")
	lf := mustCell(t, m, "osc_lf", "GP_LFOSC")
	lf.Parameters["PWRDN_EN"] = "1"
	rc := mustCell(t, m, "osc_rc", "GP_RCOSC")
	rc.Parameters["PWRDN_EN"] = "1"

	n1 := m.Net(2)
	m.Connect(lutA, "OUT", "output", n1)
	m.Connect(lf, "PWRDN", "input", n1)
	n2 := m.Net(3)
	m.Connect(lutB, "OUT", "output", n2)
	m.Connect(rc, "PWRDN", "input", n2)

	_, err := runFit(t, m)
	var derr *DRCError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want DRCError", err)
	}
	if !strings.Contains(err.Error(), "LFOSC") || !strings.Contains(err.Error(), "RCOSC") {
		t.Fatalf("diagnostic missing oscillator context: %v", err)
	}
}

func TestOscillatorsSharingPowerDown(t *testing.T) {
	m := netlist.NewModule("top")
	lut := mustCell(t, m, "gate", "GP_2LUT")
	lf := mustCell(t, m, "osc_lf", "GP_LFOSC")
	lf.Parameters["PWRDN_EN"] = "1"
	rc := mustCell(t, m, "osc_rc", "GP_RCOSC")
	rc.Parameters["PWRDN_EN"] = "1"

	n := m.Net(2)
	m.Connect(lut, "OUT", "output", n)
	m.Connect(lf, "PWRDN", "input", n)
	m.Connect(rc, "PWRDN", "input", n)

	if _, err := runFit(t, m); err != nil {
		t.Fatalf("shared powerdown rejected: %v", err)
	}
}

// Fan-out from one source into the other matrix shares one cross
// connection.
func TestRouteFanoutAffinity(t *testing.T) {
	m := netlist.NewModule("top")
	src := mustCell(t, m, "src", "GP_IBUF")
	src.Loc = "P2" // matrix 0
	a := mustCell(t, m, "sink_a", "GP_OBUF")
	a.Loc = "P12" // matrix 1
	b := mustCell(t, m, "sink_b", "GP_OBUF")
	b.Loc = "P13"

	n := m.Net(2)
	m.Connect(src, "OUT", "output", n)
	m.Connect(a, "IN", "input", n)
	m.Connect(b, "IN", "input", n)

	res, err := runFit(t, m)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if got := res.routes["matrix0->matrix1"]; got != 1 {
		t.Fatalf("fan-out used %d cross connections, want 1", got)
	}
	if got := res.routes["matrix1->matrix0"]; got != 0 {
		t.Fatalf("reverse pool used %d, want 0", got)
	}
}

// Eleven distinct matrix-crossing sources exceed the ten cross connections
// in one direction and must fail with a named pool and edge.
func TestRoutePoolExhaustion(t *testing.T) {
	m := netlist.NewModule("top")
	netNum := 2

	addCross := func(srcName, srcType, srcLoc, srcPort, dstName, dstType, dstLoc, dstPort string) {
		src := mustCell(t, m, srcName, srcType)
		src.Loc = srcLoc
		dst := mustCell(t, m, dstName, dstType)
		dst.Loc = dstLoc
		n := m.Net(netNum)
		netNum++
		m.Connect(src, srcPort, "output", n)
		m.Connect(dst, dstPort, "input", n)
	}

	// Nine buffered pins on matrix 0 driving nine output pins on matrix 1.
	for i := 0; i < 9; i++ {
		addCross(
			fmt.Sprintf("in_%d", i), "GP_IBUF", fmt.Sprintf("P%d", 2+i), "OUT",
			fmt.Sprintf("out_%d", i), "GP_OBUF", fmt.Sprintf("P%d", 12+i), "IN")
	}
	// Two matrix 0 LUTs driving matrix 1 LUTs push it to eleven.
	addCross("x_0", "GP_2LUT", "LUT2_0", "OUT", "y_0", "GP_2LUT", "LUT2_4", "IN0")
	addCross("x_1", "GP_2LUT", "LUT2_1", "OUT", "y_1", "GP_2LUT", "LUT2_5", "IN0")

	_, err := runFit(t, m)
	if !errors.Is(err, par.ErrUnroutable) {
		t.Fatalf("err = %v, want ErrUnroutable", err)
	}
	var rerr *par.RouteError
	if !errors.As(err, &rerr) {
		t.Fatalf("err is not a *RouteError: %v", err)
	}
	if rerr.Pool != "matrix0->matrix1" {
		t.Fatalf("failing pool = %q", rerr.Pool)
	}
	if rerr.Edge == "" {
		t.Fatalf("failing edge not named")
	}
}

func TestBuildGraphsRejectsBadInput(t *testing.T) {
	dev, _ := greenpak4.NewDevice(greenpak4.PartSLG46620)

	m := netlist.NewModule("top")
	mustCell(t, m, "mystery", "GP_WARP_DRIVE")
	if _, _, _, err := BuildGraphs(m, dev); err == nil {
		t.Fatalf("unknown cell type accepted")
	}

	m = netlist.NewModule("top")
	c := mustCell(t, m, "buf", "GP_IBUF")
	c.Loc = "NOWHERE"
	if _, _, _, err := BuildGraphs(m, dev); err == nil {
		t.Fatalf("bogus LOC site accepted")
	}

	m = netlist.NewModule("top")
	c = mustCell(t, m, "buf", "GP_IBUF")
	c.Loc = "ACMP0"
	if _, _, _, err := BuildGraphs(m, dev); err == nil {
		t.Fatalf("class-incompatible LOC accepted")
	}

	m = netlist.NewModule("top")
	c = mustCell(t, m, "buf_a", "GP_IBUF")
	c.Loc = "P4"
	c = mustCell(t, m, "buf_b", "GP_IBUF")
	c.Loc = "P4"
	if _, _, _, err := BuildGraphs(m, dev); err == nil {
		t.Fatalf("two cells constrained to one site accepted")
	}
}

// buildDeterminismDesign is a moderately connected design exercising both
// matrices and the improvement pass.
func buildDeterminismDesign(t *testing.T) *netlist.Module {
	m := netlist.NewModule("top")
	in0 := mustCell(t, m, "in0", "GP_IBUF")
	in1 := mustCell(t, m, "in1", "GP_IBUF")
	g0 := mustCell(t, m, "g0", "GP_2LUT")
	g1 := mustCell(t, m, "g1", "GP_2LUT")
	g2 := mustCell(t, m, "g2", "GP_3LUT")
	out0 := mustCell(t, m, "out0", "GP_OBUF")
	osc := mustCell(t, m, "osc", "GP_LFOSC")

	n2 := m.Net(2)
	m.Connect(in0, "OUT", "output", n2)
	m.Connect(g0, "IN0", "input", n2)
	m.Connect(g2, "IN0", "input", n2)
	n3 := m.Net(3)
	m.Connect(in1, "OUT", "output", n3)
	m.Connect(g0, "IN1", "input", n3)
	m.Connect(g1, "IN0", "input", n3)
	n4 := m.Net(4)
	m.Connect(osc, "CLKOUT", "output", n4)
	m.Connect(g1, "IN1", "input", n4)
	n5 := m.Net(5)
	m.Connect(g0, "OUT", "output", n5)
	m.Connect(g2, "IN1", "input", n5)
	n6 := m.Net(6)
	m.Connect(g1, "OUT", "output", n6)
	m.Connect(g2, "IN2", "input", n6)
	n7 := m.Net(7)
	m.Connect(g2, "OUT", "output", n7)
	m.Connect(out0, "IN", "input", n7)
	return m
}

func TestEndToEndDeterminism(t *testing.T) {
	type outcome struct {
		placement map[string]string
		routes    map[string]int
		digest    uint64
	}
	run := func() outcome {
		m := buildDeterminismDesign(t)
		res, err := runFit(t, m)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		placement := make(map[string]string)
		for _, c := range m.CellsSorted() {
			placement[c.Name()] = siteOf(t, c)
		}
		return outcome{placement: placement, routes: res.routes, digest: res.dev.ConfigDigest()}
	}

	a := run()
	b := run()
	if a.digest != b.digest {
		t.Fatalf("config digest differs between identical runs")
	}
	for cell, site := range a.placement {
		if b.placement[cell] != site {
			t.Fatalf("cell %q placed on %s then %s", cell, site, b.placement[cell])
		}
	}
	for pool, n := range a.routes {
		if b.routes[pool] != n {
			t.Fatalf("pool %q used %d then %d", pool, n, b.routes[pool])
		}
	}
}

func TestRunPrintsReports(t *testing.T) {
	m := netlist.NewModule("top")
	ibuf := mustCell(t, m, "ibuf1", "GP_IBUF")
	obuf := mustCell(t, m, "obuf1", "GP_OBUF")
	n := m.Net(2)
	m.Connect(ibuf, "OUT", "output", n)
	m.Connect(obuf, "IN", "input", n)

	dev, _ := greenpak4.NewDevice(greenpak4.PartSLG46620)
	var buf strings.Builder
	if err := Run(m, dev, Options{Out: &buf}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Post-PAR design rule checks", "Device utilization", "Placement report", "ibuf1", "Config digest"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRunFailurePrintsBestEffort(t *testing.T) {
	m := netlist.NewModule("top")
	mustCell(t, m, "vref_a", "GP_VREF")
	mustCell(t, m, "vref_b", "GP_VREF")

	dev, _ := greenpak4.NewDevice(greenpak4.PartSLG46620)
	var buf strings.Builder
	err := Run(m, dev, Options{Out: &buf})
	if !errors.Is(err, par.ErrUnplaceable) {
		t.Fatalf("err = %v, want ErrUnplaceable", err)
	}
	out := buf.String()
	if !strings.Contains(out, "PAR failed") || !strings.Contains(out, "(unplaced)") {
		t.Fatalf("best-effort report missing:\n%s", out)
	}
}

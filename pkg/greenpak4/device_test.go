package greenpak4

import (
	"bytes"
	"testing"
)

func TestInventorySLG46620(t *testing.T) {
	d, err := NewDevice(PartSLG46620)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}

	if got := len(d.IOBPins()); got != 18 {
		t.Fatalf("got %d IOBs, want 18", got)
	}
	if d.GetIOB(6) == nil || d.GetIOB(6).Pin != 6 {
		t.Fatalf("pin 6 IOB missing")
	}
	if d.GetIOB(11) != nil {
		t.Fatalf("pin 11 is not bonded out on this part")
	}
	if d.GetAcmpCount() != 4 {
		t.Fatalf("got %d ACMPs, want 4", d.GetAcmpCount())
	}
	for _, osc := range []*Oscillator{d.GetLFOscillator(), d.GetRingOscillator(), d.GetRCOscillator()} {
		if osc == nil {
			t.Fatalf("missing oscillator")
		}
	}

	// Matrix split: pin 2 on matrix 0, pin 12 on matrix 1, rails global.
	if d.GetIOB(2).Matrix() != 0 || d.GetIOB(12).Matrix() != 1 {
		t.Fatalf("IOB matrix assignment wrong")
	}
	if d.GetVref().Matrix() != 0 || d.GetLFOscillator().Matrix() != 1 {
		t.Fatalf("analog/oscillator matrix assignment wrong")
	}
}

func TestEntityByName(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)
	ent, ok := d.EntityByName("ACMP2")
	if !ok || ent != Entity(d.GetAcmp(2)) {
		t.Fatalf("EntityByName(ACMP2) wrong")
	}
	if _, ok := d.EntityByName("NOPE"); ok {
		t.Fatalf("bogus site resolved")
	}
}

func TestEntityOutputEquality(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)

	if d.GetPower() == d.GetGround() {
		t.Fatalf("VDD and GND compare equal")
	}
	if d.GetPower() != d.GetPower() {
		t.Fatalf("sentinel equality not structural")
	}
	if !d.GetPower().IsPowerRail() || !d.GetGround().IsPowerRail() {
		t.Fatalf("rails not flagged as power rails")
	}

	a := d.GetIOB(6).GetOutput("OUT")
	b := d.GetIOB(6).GetOutput("OUT")
	c := d.GetIOB(7).GetOutput("OUT")
	if a != b {
		t.Fatalf("same entity+port must compare equal")
	}
	if a == c {
		t.Fatalf("different entities must not compare equal")
	}
	if a.GetOutputName() != "P6.OUT" {
		t.Fatalf("output name = %q", a.GetOutputName())
	}
	if d.GetPower().GetOutputName() != "VDD" {
		t.Fatalf("rail name = %q", d.GetPower().GetOutputName())
	}
}

func TestAnalogCapabilities(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)
	if !d.GetVref().GetOutput("VOUT").IsAnalog() {
		t.Fatalf("VREF output not analog")
	}
	if !d.GetPGA().GetOutput("VOUT").IsAnalog() {
		t.Fatalf("PGA output not analog")
	}
	if d.GetIOB(2).GetOutput("OUT").IsAnalog() {
		t.Fatalf("plain IOB output flagged analog")
	}
}

func TestUnconfiguredInputsReadAsGround(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)
	if d.GetAcmp(1).GetInputSignal() != d.GetGround() {
		t.Fatalf("fresh comparator input is not ground")
	}
	if d.GetLFOscillator().GetPowerDown() != d.GetGround() {
		t.Fatalf("fresh oscillator powerdown is not ground")
	}
	if !d.GetLFOscillator().IsConstantPowerDown() {
		t.Fatalf("ground powerdown should be constant")
	}
}

func TestSetInputValidatesPort(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)
	acmp := d.GetAcmp(0)
	if err := acmp.SetInput("VIN", d.GetPower()); err != nil {
		t.Fatalf("SetInput(VIN): %v", err)
	}
	if err := acmp.SetInput("BOGUS", d.GetPower()); err == nil {
		t.Fatalf("bogus port accepted")
	}
}

func TestConfigImageDeterministic(t *testing.T) {
	build := func() []byte {
		d, _ := NewDevice(PartSLG46620)
		d.GetAcmp(1).SetInputSignal(d.GetIOB(6).GetOutput("OUT"))
		return d.WriteConfigImage()
	}
	a := build()
	b := build()
	if !bytes.Equal(a, b) {
		t.Fatalf("identical state produced different images")
	}

	d, _ := NewDevice(PartSLG46620)
	if bytes.Equal(a, d.WriteConfigImage()) {
		t.Fatalf("configuration change did not affect the image")
	}
	if d.ConfigDigest() == 0 {
		t.Fatalf("digest is zero")
	}
}

func TestRoutingPools(t *testing.T) {
	d, _ := NewDevice(PartSLG46620)
	pools := d.RoutingPools()
	if len(pools) != 2 {
		t.Fatalf("got %d pools, want 2", len(pools))
	}
	for _, p := range pools {
		if p.Capacity != 10 {
			t.Fatalf("pool %s capacity = %d, want 10", p.Name, p.Capacity)
		}
	}

	if pool, ok := d.PoolForConnection(d.GetIOB(2), d.GetIOB(12)); !ok || pool != "matrix0->matrix1" {
		t.Fatalf("m0->m1 = %q, %v", pool, ok)
	}
	if pool, ok := d.PoolForConnection(d.GetIOB(12), d.GetIOB(2)); !ok || pool != "matrix1->matrix0" {
		t.Fatalf("m1->m0 = %q, %v", pool, ok)
	}
	if _, ok := d.PoolForConnection(d.GetIOB(2), d.GetIOB(3)); ok {
		t.Fatalf("same-matrix connection should need no pool")
	}
	if _, ok := d.PoolForConnection(d.GetIOB(2), d.gnd); ok {
		t.Fatalf("rail connection should need no pool")
	}
}

func TestBitstreamPacking(t *testing.T) {
	img := &ConfigImage{}
	img.WriteBits(0b101, 3)
	img.WriteBit(true)
	if img.Len() != 4 {
		t.Fatalf("len = %d, want 4", img.Len())
	}
	got := img.Bytes()
	if len(got) != 1 || got[0] != 0b1101 {
		t.Fatalf("packed = %08b", got[0])
	}
}

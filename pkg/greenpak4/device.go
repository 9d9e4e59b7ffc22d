package greenpak4

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Part identifies a device in the GreenPAK4 family.
type Part int

const (
	// PartSLG46620 is the dual-matrix 20-pin part.
	PartSLG46620 Part = iota
)

func (p Part) String() string {
	switch p {
	case PartSLG46620:
		return "SLG46620"
	default:
		return fmt.Sprintf("Part(%d)", int(p))
	}
}

// crossConnectionCount is the per-direction capacity of the inter-matrix
// routing fabric on the SLG46620.
const crossConnectionCount = 10

// RoutingPool describes one finite class of shared routing resources.
type RoutingPool struct {
	Name     string
	Capacity int
}

// Device is the full site inventory of one part. Sites are created once at
// construction and persist for the process lifetime; only their committed
// configuration changes between PAR runs.
type Device struct {
	part Part

	entities    []Entity
	entityIndex map[Entity]int

	iobs    map[int]*IOB
	acmps   []*ACMP
	lut2s   []*LUT
	lut3s   []*LUT
	lfosc   *Oscillator
	ringosc *Oscillator
	rcosc   *Oscillator
	vdd     *PowerRail
	gnd     *PowerRail
	por     *PowerOnReset
	vref    *VoltageReference
	pga     *PGA
}

// NewDevice builds the site inventory for the given part.
func NewDevice(part Part) (*Device, error) {
	if part != PartSLG46620 {
		return nil, fmt.Errorf("greenpak4: unsupported part %s", part)
	}

	d := &Device{
		part:        part,
		entityIndex: make(map[Entity]int),
		iobs:        make(map[int]*IOB),
	}

	// Rails first: every unconfigured input reads as ground.
	d.gnd = newPowerRail(d, "GND", false)
	d.vdd = newPowerRail(d, "VDD", true)
	d.add(d.gnd)
	d.add(d.vdd)

	// Matrix 0: pins 2-10, the analog blocks, half the LUTs.
	for pin := 2; pin <= 10; pin++ {
		iob := newIOB(d, pin, 0)
		d.iobs[pin] = iob
		d.add(iob)
	}
	for i := 0; i < 4; i++ {
		acmp := newACMP(d, i, 0)
		d.acmps = append(d.acmps, acmp)
		d.add(acmp)
	}
	d.vref = newVoltageReference(d, 0)
	d.add(d.vref)
	d.pga = newPGA(d, 0)
	d.add(d.pga)
	for i := 0; i < 4; i++ {
		lut := newLUT(d, i, 2, 0)
		d.lut2s = append(d.lut2s, lut)
		d.add(lut)
	}
	for i := 0; i < 4; i++ {
		lut := newLUT(d, i, 3, 0)
		d.lut3s = append(d.lut3s, lut)
		d.add(lut)
	}

	// Matrix 1: pins 12-20, the oscillators, POR, the other LUT half.
	for pin := 12; pin <= 20; pin++ {
		iob := newIOB(d, pin, 1)
		d.iobs[pin] = iob
		d.add(iob)
	}
	for i := 4; i < 8; i++ {
		lut := newLUT(d, i, 2, 1)
		d.lut2s = append(d.lut2s, lut)
		d.add(lut)
	}
	for i := 4; i < 8; i++ {
		lut := newLUT(d, i, 3, 1)
		d.lut3s = append(d.lut3s, lut)
		d.add(lut)
	}
	d.lfosc = newOscillator(d, "LFOSC", 1)
	d.add(d.lfosc)
	d.ringosc = newOscillator(d, "RINGOSC", 1)
	d.add(d.ringosc)
	d.rcosc = newOscillator(d, "RCOSC", 1)
	d.add(d.rcosc)
	d.por = newPowerOnReset(d, 1)
	d.add(d.por)

	return d, nil
}

func (d *Device) add(e Entity) {
	d.entityIndex[e] = len(d.entities)
	d.entities = append(d.entities, e)
}

// Part returns the part this device models.
func (d *Device) Part() Part { return d.part }

// Entities returns every site in fixed inventory order.
func (d *Device) Entities() []Entity { return d.entities }

// EntityByName returns the site with the given description (P4, ACMP1, ...).
func (d *Device) EntityByName(name string) (Entity, bool) {
	for _, e := range d.entities {
		if e.Description() == name {
			return e, true
		}
	}
	return nil, false
}

// GetIOB returns the I/O buffer on the given package pin, or nil.
func (d *Device) GetIOB(pin int) *IOB { return d.iobs[pin] }

// IOBPins returns the bonded-out pin numbers in ascending order.
func (d *Device) IOBPins() []int {
	pins := make([]int, 0, len(d.iobs))
	for pin := range d.iobs {
		pins = append(pins, pin)
	}
	sort.Ints(pins)
	return pins
}

// GetAcmpCount returns the number of comparator sites.
func (d *Device) GetAcmpCount() int { return len(d.acmps) }

// GetAcmp returns the i'th comparator. ACMP0 owns the shared input mux.
func (d *Device) GetAcmp(i int) *ACMP { return d.acmps[i] }

// GetLFOscillator returns the low-frequency oscillator.
func (d *Device) GetLFOscillator() *Oscillator { return d.lfosc }

// GetRingOscillator returns the ring oscillator.
func (d *Device) GetRingOscillator() *Oscillator { return d.ringosc }

// GetRCOscillator returns the RC oscillator.
func (d *Device) GetRCOscillator() *Oscillator { return d.rcosc }

// GetPowerOnReset returns the power-on reset block.
func (d *Device) GetPowerOnReset() *PowerOnReset { return d.por }

// GetVref returns the voltage reference.
func (d *Device) GetVref() *VoltageReference { return d.vref }

// GetPGA returns the programmable-gain amplifier.
func (d *Device) GetPGA() *PGA { return d.pga }

// GetPower returns the constant VDD signal.
func (d *Device) GetPower() EntityOutput { return d.vdd.GetOutput("OUT") }

// GetGround returns the constant GND signal.
func (d *Device) GetGround() EntityOutput { return d.gnd.GetOutput("OUT") }

// RoutingPools returns the finite routing resource classes of this part, in
// fixed order.
func (d *Device) RoutingPools() []RoutingPool {
	return []RoutingPool{
		{Name: "matrix0->matrix1", Capacity: crossConnectionCount},
		{Name: "matrix1->matrix0", Capacity: crossConnectionCount},
	}
}

// PoolForConnection names the pool a connection between the two sites must
// draw from, or false if the connection needs no shared resource (same
// matrix, or either side global).
func (d *Device) PoolForConnection(src, dst Entity) (string, bool) {
	sm, dm := src.Matrix(), dst.Matrix()
	if sm < 0 || dm < 0 || sm == dm {
		return "", false
	}
	return fmt.Sprintf("matrix%d->matrix%d", sm, dm), true
}

// WriteConfigImage emits the full configuration bit image for the committed
// device state.
func (d *Device) WriteConfigImage() []byte {
	img := &ConfigImage{}
	for _, e := range d.entities {
		e.emitConfig(img)
	}
	return img.Bytes()
}

// ConfigDigest returns a digest of the configuration image, printed in the
// utilization report and used to verify bit-exact reproducibility.
func (d *Device) ConfigDigest() uint64 {
	return xxhash.Sum64(d.WriteConfigImage())
}

// outputCode gives each routable signal a stable small code for the config
// image mux fields. Codes depend only on inventory order, never on map
// iteration.
func (d *Device) outputCode(o EntityOutput) uint32 {
	src := o.GetRealEntity()
	if src == nil {
		return 0
	}
	if src == Entity(d.gnd) {
		return 0
	}
	if src == Entity(d.vdd) {
		return 1
	}
	return uint32(2 + d.entityIndex[src])
}

package greenpak4

import "strings"

// Oscillator is one of the three on-die oscillators (low-frequency, ring,
// RC). They differ in frequency, not in configuration shape, so one type
// covers all three.
type Oscillator struct {
	baseEntity

	powerDownEn bool
}

func newOscillator(device *Device, kind string, matrix int) *Oscillator {
	o := &Oscillator{}
	o.init(device, o, kind, kind, matrix)
	return o
}

func (o *Oscillator) InputPorts() []string  { return []string{"PWRDN"} }
func (o *Oscillator) OutputPorts() []string { return []string{"CLKOUT"} }

func (o *Oscillator) Caps() Capabilities { return Capabilities{} }

// GetPowerDownEn reports whether the power-down input is enabled.
func (o *Oscillator) GetPowerDownEn() bool {
	return o.powerDownEn
}

// GetPowerDown returns the signal gating the oscillator's power-down.
func (o *Oscillator) GetPowerDown() EntityOutput {
	return o.GetInput("PWRDN")
}

// IsConstantPowerDown reports whether the power-down input is tied to a
// rail, in which case it cannot conflict with any other oscillator's.
func (o *Oscillator) IsConstantPowerDown() bool {
	return o.GetPowerDown().IsPowerRail()
}

func (o *Oscillator) CommitChanges() error {
	cell := o.matedCell()
	if cell == nil {
		return nil
	}
	switch strings.ToUpper(cell.Parameters["PWRDN_EN"]) {
	case "1", "TRUE", "YES":
		o.powerDownEn = true
	}
	return nil
}

func (o *Oscillator) emitConfig(img *ConfigImage) {
	img.WriteBit(o.IsUsed())
	img.WriteBit(o.powerDownEn)
	img.WriteBits(o.device.outputCode(o.GetPowerDown()), 6)
}

package greenpak4

// PowerRail is the constant VDD or GND rail. Rails are placeable (GP_VDD and
// GP_VSS cells map onto them) but carry no configuration and never need a
// load.
type PowerRail struct {
	baseEntity

	high bool
}

func newPowerRail(device *Device, name string, high bool) *PowerRail {
	p := &PowerRail{high: high}
	p.init(device, p, name, name, -1)
	return p
}

// IsHigh reports whether this is the VDD rail.
func (p *PowerRail) IsHigh() bool { return p.high }

func (p *PowerRail) InputPorts() []string  { return nil }
func (p *PowerRail) OutputPorts() []string { return []string{"OUT"} }

func (p *PowerRail) Caps() Capabilities { return Capabilities{PowerRail: true} }

func (p *PowerRail) CommitChanges() error { return nil }

func (p *PowerRail) emitConfig(img *ConfigImage) {}

// PowerOnReset generates the RST_DONE strobe once supply is stable. The DRC
// uses it as the fixed power enable source when auto-enabling ACMP0.
type PowerOnReset struct {
	baseEntity
}

func newPowerOnReset(device *Device, matrix int) *PowerOnReset {
	p := &PowerOnReset{}
	p.init(device, p, "POR", "POR", matrix)
	return p
}

func (p *PowerOnReset) InputPorts() []string  { return nil }
func (p *PowerOnReset) OutputPorts() []string { return []string{"RST_DONE"} }

func (p *PowerOnReset) Caps() Capabilities { return Capabilities{} }

func (p *PowerOnReset) CommitChanges() error { return nil }

func (p *PowerOnReset) emitConfig(img *ConfigImage) {
	img.WriteBit(p.IsUsed())
}

// VoltageReference produces a programmable analog reference voltage. Its
// output can only be carried by analog-configured input buffers.
type VoltageReference struct {
	baseEntity
}

func newVoltageReference(device *Device, matrix int) *VoltageReference {
	v := &VoltageReference{}
	v.init(device, v, "VREF", "VREF", matrix)
	return v
}

func (v *VoltageReference) InputPorts() []string  { return nil }
func (v *VoltageReference) OutputPorts() []string { return []string{"VOUT"} }

func (v *VoltageReference) Caps() Capabilities { return Capabilities{AnalogSource: true} }

func (v *VoltageReference) CommitChanges() error { return nil }

func (v *VoltageReference) emitConfig(img *ConfigImage) {
	img.WriteBit(v.IsUsed())
}

// PGA is the programmable-gain amplifier, the other analog-only source on
// the part.
type PGA struct {
	baseEntity
}

func newPGA(device *Device, matrix int) *PGA {
	p := &PGA{}
	p.init(device, p, "PGA", "PGA", matrix)
	return p
}

func (p *PGA) InputPorts() []string  { return []string{"VIN"} }
func (p *PGA) OutputPorts() []string { return []string{"VOUT"} }

func (p *PGA) Caps() Capabilities { return Capabilities{AnalogSource: true} }

func (p *PGA) CommitChanges() error { return nil }

func (p *PGA) emitConfig(img *ConfigImage) {
	img.WriteBit(p.IsUsed())
	img.WriteBits(p.device.outputCode(p.GetInput("VIN")), 6)
}

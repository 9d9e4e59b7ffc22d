package greenpak4

import (
	"fmt"
	"strconv"
)

// LUT is an n-input lookup table site.
type LUT struct {
	baseEntity

	Index  int
	Inputs int

	initVal uint32
}

func newLUT(device *Device, index, inputs, matrix int) *LUT {
	l := &LUT{Index: index, Inputs: inputs}
	l.init(device, l, fmt.Sprintf("LUT%d_%d", inputs, index), fmt.Sprintf("LUT%d", inputs), matrix)
	return l
}

func (l *LUT) InputPorts() []string {
	ports := make([]string, l.Inputs)
	for i := range ports {
		ports[i] = fmt.Sprintf("IN%d", i)
	}
	return ports
}

func (l *LUT) OutputPorts() []string { return []string{"OUT"} }

func (l *LUT) Caps() Capabilities { return Capabilities{} }

func (l *LUT) CommitChanges() error {
	cell := l.matedCell()
	if cell == nil {
		return nil
	}
	init := cell.Parameters["INIT"]
	if init == "" {
		return nil
	}
	// Yosys emits INIT either as a binary string or a decimal number.
	val, err := strconv.ParseUint(init, 2, 32)
	if err != nil {
		val, err = strconv.ParseUint(init, 10, 32)
	}
	if err != nil {
		return fmt.Errorf("greenpak4: cell %q has malformed INIT %q", cell.Name(), init)
	}
	l.initVal = uint32(val)
	return nil
}

func (l *LUT) emitConfig(img *ConfigImage) {
	img.WriteBits(l.initVal, 1<<uint(l.Inputs))
	for _, port := range l.InputPorts() {
		img.WriteBits(l.device.outputCode(l.GetInput(port)), 6)
	}
}

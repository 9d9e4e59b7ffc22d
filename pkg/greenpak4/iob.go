package greenpak4

import "fmt"

// IOB direction codes as emitted into the config image.
const (
	iobModeUnused = iota
	iobModeInput
	iobModeOutput
	iobModeBidir
)

// IOB is one I/O buffer site, bound to a package pin.
type IOB struct {
	baseEntity

	Pin int

	mode       int
	analogIbuf bool
}

func newIOB(device *Device, pin, matrix int) *IOB {
	i := &IOB{Pin: pin}
	i.init(device, i, fmt.Sprintf("P%d", pin), "IOB", matrix)
	return i
}

func (i *IOB) InputPorts() []string  { return []string{"IN"} }
func (i *IOB) OutputPorts() []string { return []string{"OUT"} }

func (i *IOB) Caps() Capabilities { return Capabilities{} }

// GetOutputSignal returns the signal driving the pad, i.e. whatever was
// routed into the IOB's IN port.
func (i *IOB) GetOutputSignal() EntityOutput {
	return i.GetInput("IN")
}

// IsAnalogIbuf reports whether the input buffer is configured for analog
// pass-through rather than a digital threshold.
func (i *IOB) IsAnalogIbuf() bool {
	return i.analogIbuf
}

func (i *IOB) CommitChanges() error {
	cell := i.matedCell()
	if cell == nil {
		return nil
	}
	switch cell.Type {
	case "GP_IBUF":
		i.mode = iobModeInput
	case "GP_OBUF":
		i.mode = iobModeOutput
	case "GP_IOBUF":
		i.mode = iobModeBidir
	default:
		return fmt.Errorf("greenpak4: cell %q of type %s cannot configure IOB %s",
			cell.Name(), cell.Type, i.desc)
	}
	if cell.Parameters["IBUF_TYPE"] == "ANALOG" {
		i.analogIbuf = true
	}
	return nil
}

func (i *IOB) emitConfig(img *ConfigImage) {
	img.WriteBits(uint32(i.mode), 2)
	img.WriteBit(i.analogIbuf)
	img.WriteBits(i.device.outputCode(i.GetInput("IN")), 6)
}

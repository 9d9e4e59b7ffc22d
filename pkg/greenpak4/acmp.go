package greenpak4

import "fmt"

// ACMP is one analog comparator site. On the SLG46620, ACMP0 owns the
// physical input multiplexer that every other comparator's VIN aliases, which
// is why the post-PAR DRC has to reconcile their requested inputs.
type ACMP struct {
	baseEntity

	Index int

	powerEn EntityOutput
}

func newACMP(device *Device, index, matrix int) *ACMP {
	a := &ACMP{Index: index}
	a.init(device, a, fmt.Sprintf("ACMP%d", index), "ACMP", matrix)
	return a
}

func (a *ACMP) InputPorts() []string  { return []string{"VIN", "VREF", "PWREN"} }
func (a *ACMP) OutputPorts() []string { return []string{"OUT"} }

func (a *ACMP) Caps() Capabilities { return Capabilities{} }

// GetInputSignal returns the signal requested on the shared input mux.
func (a *ACMP) GetInputSignal() EntityOutput {
	return a.GetInput("VIN")
}

// SetInputSignal configures the shared input mux. Used by the DRC when it
// auto-enables ACMP0 on behalf of downstream comparators.
func (a *ACMP) SetInputSignal(src EntityOutput) {
	a.inputs["VIN"] = src
}

// GetPowerEn returns the power enable signal.
func (a *ACMP) GetPowerEn() EntityOutput {
	if a.powerEn != (EntityOutput{}) {
		return a.powerEn
	}
	return a.GetInput("PWREN")
}

// SetPowerEn forces the power enable source, bypassing routed edges.
func (a *ACMP) SetPowerEn(src EntityOutput) {
	a.powerEn = src
}

func (a *ACMP) CommitChanges() error {
	// All comparator configuration arrives through routed input signals.
	return nil
}

func (a *ACMP) emitConfig(img *ConfigImage) {
	img.WriteBit(a.IsUsed() || a.GetInputSignal() != a.device.GetGround())
	img.WriteBits(a.device.outputCode(a.GetInputSignal()), 6)
	img.WriteBits(a.device.outputCode(a.GetInput("VREF")), 6)
	img.WriteBits(a.device.outputCode(a.GetPowerEn()), 6)
}
